// Package mcpserve exposes band runs and run history as MCP tools so agent
// hosts can drive the pipeline over stdio.
package mcpserve

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"raybands/internal/band"
	"raybands/internal/capture"
	"raybands/internal/display"
	"raybands/internal/logging"
	"raybands/internal/run"
	"raybands/internal/session"
	"raybands/internal/store"
)

// Server wraps the MCP SDK server. One band run at a time: the optical
// session is single-writer, so concurrent run_bands calls are rejected
// rather than queued.
type Server struct {
	MCPServer *sdkmcp.Server

	connect session.Connector
	grabber capture.Grabber
	dbPath  string
	log     *slog.Logger

	mu      sync.Mutex
	running bool
}

// Options configures the server's session and storage wiring.
type Options struct {
	Connect session.Connector
	Grabber capture.Grabber
	DBPath  string // run-history database; empty means store.DefaultDBPath
	Logger  *slog.Logger
}

// NewServer creates an MCP server with the band run tools registered.
func NewServer(opts Options) *Server {
	if opts.DBPath == "" {
		opts.DBPath = store.DefaultDBPath
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("mcp")
	}
	s := &Server{
		connect: opts.Connect,
		grabber: opts.Grabber,
		dbPath:  opts.DBPath,
		log:     opts.Logger,
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "raybands", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_bands",
		Description: "Run power-band extraction against the optical session: filter ray paths, partition into cumulative-power intervals, export CSV and screenshot per band. Returns the run ID and per-band summary.",
	}, s.handleRunBands)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_report",
		Description: "Get a recorded run by ID, including per-band row detail and artifact paths.",
	}, s.handleGetReport)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List recorded runs, newest first.",
	}, s.handleListRuns)
}

// --- Tool input/output types ---

type runBandsInput struct {
	ProcessID int    `json:"process_id" jsonschema:"process ID of the running optical simulation"`
	Source    string `json:"source,omitempty" jsonschema:"source name filter (default * = all)"`
	Surface   string `json:"surface,omitempty" jsonschema:"final surface filter (default * = all)"`
	Intervals string `json:"intervals" jsonschema:"comma-separated upper-lower percent pairs, e.g. 100-70,70-0"`
	OutputDir string `json:"output_dir,omitempty" jsonschema:"artifact directory (default .raybands/output)"`
	Base      string `json:"base,omitempty" jsonschema:"artifact base name (default raypaths)"`
}

type bandSummary struct {
	Interval  string  `json:"interval"`
	Rays      int     `json:"rays"`
	Power     float64 `json:"power"`
	CSVPath   string  `json:"csv_path,omitempty"`
	ImagePath string  `json:"image_path,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

type runBandsOutput struct {
	RunID      string        `json:"run_id"`
	RunSize    int           `json:"run_size"`
	Filtered   int           `json:"filtered"`
	TotalPower float64       `json:"total_power"`
	Outcome    string        `json:"outcome"`
	Bands      []bandSummary `json:"bands"`
}

type getReportInput struct {
	RunID string `json:"run_id" jsonschema:"run ID from run_bands or list_runs"`
}

type bandRowOutput struct {
	UpperPercent float64 `json:"upper_percent"`
	LowerPercent float64 `json:"lower_percent"`
	RayCount     int     `json:"ray_count"`
	BandPower    float64 `json:"band_power"`
	CSVPath      string  `json:"csv_path,omitempty"`
	ImagePath    string  `json:"image_path,omitempty"`
	Warning      string  `json:"warning,omitempty"`
}

type getReportOutput struct {
	RunID      string          `json:"run_id"`
	StartedAt  string          `json:"started_at"`
	ProcessID  int             `json:"process_id"`
	Source     string          `json:"source"`
	Surface    string          `json:"surface"`
	RunSize    int             `json:"run_size"`
	Filtered   int             `json:"filtered"`
	TotalPower float64         `json:"total_power"`
	Bands      []bandRowOutput `json:"bands"`
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max runs to return (default 20)"`
}

type runListEntry struct {
	RunID      string  `json:"run_id"`
	StartedAt  string  `json:"started_at"`
	ProcessID  int     `json:"process_id"`
	Source     string  `json:"source"`
	Surface    string  `json:"surface"`
	Filtered   int     `json:"filtered"`
	TotalPower float64 `json:"total_power"`
}

type listRunsOutput struct {
	Runs  []runListEntry `json:"runs"`
	Total int            `json:"total"`
}

// --- Tool handlers ---

func (s *Server) handleRunBands(ctx context.Context, _ *sdkmcp.CallToolRequest, input runBandsInput) (*sdkmcp.CallToolResult, runBandsOutput, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, runBandsOutput{}, fmt.Errorf("a band run is already in progress")
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	intervals, err := band.ParseIntervals(input.Intervals)
	if err != nil {
		return nil, runBandsOutput{}, fmt.Errorf("run_bands: %w", err)
	}

	p := &run.Profile{
		ProcessID: input.ProcessID,
		Source:    input.Source,
		Surface:   input.Surface,
		Intervals: intervals,
		OutputDir: input.OutputDir,
		Base:      input.Base,
	}
	opts := p.Options()
	opts.Connect = s.connect
	opts.Grabber = s.grabber
	opts.Logger = s.log

	s.log.Info("run_bands starting", "process_id", input.ProcessID, "intervals", input.Intervals)
	report, err := run.Execute(ctx, opts)
	if err != nil {
		return nil, runBandsOutput{}, fmt.Errorf("run_bands: %w", err)
	}

	if err := s.record(report); err != nil {
		// The run itself succeeded; history is best-effort.
		s.log.Warn("record run failed", "error", err)
	}

	out := runBandsOutput{
		RunID:      report.RunID,
		RunSize:    report.RunSize,
		Filtered:   report.Filtered,
		TotalPower: report.TotalPower,
		Outcome:    display.Outcome(report),
	}
	for _, b := range report.Bands {
		out.Bands = append(out.Bands, bandSummary{
			Interval:  b.Interval.String(),
			Rays:      len(b.Members),
			Power:     b.BandPower,
			CSVPath:   b.Artifacts.CSVPath,
			ImagePath: b.Artifacts.ImagePath,
			Notes:     display.Warnings(b.Warnings),
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetReport(_ context.Context, _ *sdkmcp.CallToolRequest, input getReportInput) (*sdkmcp.CallToolResult, getReportOutput, error) {
	if input.RunID == "" {
		return nil, getReportOutput{}, fmt.Errorf("run_id is required")
	}
	st, err := store.Open(s.dbPath)
	if err != nil {
		return nil, getReportOutput{}, fmt.Errorf("get_report: %w", err)
	}
	defer st.Close()

	r, err := st.GetRun(input.RunID)
	if err != nil {
		return nil, getReportOutput{}, fmt.Errorf("get_report: %w", err)
	}

	out := getReportOutput{
		RunID:      r.ID,
		StartedAt:  r.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		ProcessID:  r.ProcessID,
		Source:     r.Source,
		Surface:    r.Surface,
		RunSize:    r.RunSize,
		Filtered:   r.Filtered,
		TotalPower: r.TotalPower,
	}
	for _, b := range r.Bands {
		out.Bands = append(out.Bands, bandRowOutput{
			UpperPercent: b.UpperPercent,
			LowerPercent: b.LowerPercent,
			RayCount:     b.RayCount,
			BandPower:    b.BandPower,
			CSVPath:      b.CSVPath,
			ImagePath:    b.ImagePath,
			Warning:      b.Warning,
		})
	}
	return nil, out, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, input listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	st, err := store.Open(s.dbPath)
	if err != nil {
		return nil, listRunsOutput{}, fmt.Errorf("list_runs: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(limit)
	if err != nil {
		return nil, listRunsOutput{}, fmt.Errorf("list_runs: %w", err)
	}

	out := listRunsOutput{Total: len(runs)}
	for _, r := range runs {
		out.Runs = append(out.Runs, runListEntry{
			RunID:      r.ID,
			StartedAt:  r.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			ProcessID:  r.ProcessID,
			Source:     r.Source,
			Surface:    r.Surface,
			Filtered:   r.Filtered,
			TotalPower: r.TotalPower,
		})
	}
	return nil, out, nil
}

func (s *Server) record(report *run.Report) error {
	st, err := store.Open(s.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	_, err = st.RecordRun(run.ReportToRun(report))
	return err
}
