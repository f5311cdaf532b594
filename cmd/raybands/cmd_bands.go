package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"raybands/internal/band"
	"raybands/internal/format"
	"raybands/internal/logging"
	"raybands/internal/run"
	"raybands/internal/store"
)

var bandsFlags struct {
	profilePath string
	processID   int
	source      string
	surface     string
	intervals   string
	outputDir   string
	base        string
	dbPath      string
	markdown    bool
	mock        bool
}

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Run power-band extraction against a live session",
	Long: `Snapshot the session's ray paths, filter by source and final surface,
partition the filtered rays into cumulative-power intervals, and export one
CSV plus one screenshot per band. Intervals are upper-lower percent pairs:

  raybands bands --process 4242 --intervals 100-70,70-30,30-0
  raybands bands --profile profile.yaml
  raybands bands --mock --intervals 100-50,50-0

Flags override profile values. Whatever happens mid-run, every ray is
visible again before the command exits.`,
	RunE: runBands,
}

func init() {
	f := bandsCmd.Flags()
	f.StringVar(&bandsFlags.profilePath, "profile", "", "Run profile file (YAML or JSON)")
	f.IntVar(&bandsFlags.processID, "process", 0, "Process ID of the running simulation")
	f.StringVar(&bandsFlags.source, "source", "", "Source name filter (default * = all)")
	f.StringVar(&bandsFlags.surface, "surface", "", "Final surface filter (default * = all)")
	f.StringVar(&bandsFlags.intervals, "intervals", "", "Comma-separated upper-lower percent pairs, e.g. 100-70,70-0")
	f.StringVarP(&bandsFlags.outputDir, "output", "o", "", "Artifact directory (default: .raybands/output)")
	f.StringVar(&bandsFlags.base, "base", "", "Artifact base name (default: raypaths)")
	f.StringVar(&bandsFlags.dbPath, "db", defaultDBPath(), "Run-history DB path")
	f.BoolVar(&bandsFlags.markdown, "markdown", false, "Render the summary table as Markdown")
	f.BoolVar(&bandsFlags.mock, "mock", false, "Use the in-memory mock session")
}

func runBands(cmd *cobra.Command, _ []string) error {
	p := &run.Profile{}
	if bandsFlags.profilePath != "" {
		loaded, err := run.LoadProfileFromPath(bandsFlags.profilePath)
		if err != nil {
			return err
		}
		p = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("process") {
		p.ProcessID = bandsFlags.processID
	}
	if flags.Changed("source") {
		p.Source = bandsFlags.source
	}
	if flags.Changed("surface") {
		p.Surface = bandsFlags.surface
	}
	if flags.Changed("output") {
		p.OutputDir = bandsFlags.outputDir
	}
	if flags.Changed("base") {
		p.Base = bandsFlags.base
	}
	if flags.Changed("intervals") {
		ivs, err := band.ParseIntervals(bandsFlags.intervals)
		if err != nil {
			return err
		}
		p.Intervals = ivs
	}
	if len(p.Intervals) == 0 {
		return fmt.Errorf("no intervals: pass --intervals or a profile with intervals\n\nUsage: raybands bands --process <pid> --intervals 100-70,70-0")
	}

	connect, grabber, err := sessionWiring(bandsFlags.mock)
	if err != nil {
		return err
	}

	opts := p.Options()
	opts.Connect = connect
	opts.Grabber = grabber
	opts.Logger = logging.New("bands")

	report, err := run.Execute(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("bands: %w", err)
	}

	if err := recordRun(bandsFlags.dbPath, report); err != nil {
		// History is best-effort; the artifacts are already on disk.
		logging.New("bands").Warn("record run failed", "error", err)
	}

	mode := format.ASCII
	if bandsFlags.markdown {
		mode = format.Markdown
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.BandTable(report, mode))
	fmt.Fprintf(cmd.OutOrStdout(), "\nArtifacts in: %s\nRun recorded: %s\n", p.OutputDir, report.RunID)
	return nil
}

func recordRun(dbPath string, report *run.Report) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	_, err = st.RecordRun(run.ReportToRun(report))
	return err
}
