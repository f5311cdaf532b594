// Package run orchestrates one full analysis: connect, snapshot, filter,
// then per band apply / capture / export, with visibility restoration
// guaranteed on every exit path.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"raybands/internal/band"
	"raybands/internal/capture"
	"raybands/internal/export"
	"raybands/internal/logging"
	"raybands/internal/raypath"
	"raybands/internal/session"
	"raybands/internal/visibility"
)

// Warning classes attached to a band when a degradable failure occurred.
const (
	WarnMutate  = "mutate"  // best-effort visibility set failures
	WarnCapture = "capture" // screenshot unavailable; data export proceeded
	WarnExport  = "export"  // artifact write failed; session state unaffected
	WarnEmpty   = "empty"   // interval selected no rays
)

// Warning is one degradable failure surfaced on the band it affected.
type Warning struct {
	Class  string `json:"class"`
	Detail string `json:"detail"`
}

// BandResult is the outcome of one processed interval.
type BandResult struct {
	Interval  band.Interval        `json:"interval"`
	Members   []int                `json:"members"`
	BandPower float64              `json:"band_power"`
	Artifacts export.BandArtifacts `json:"artifacts"`
	Warnings  []Warning            `json:"warnings,omitempty"`
}

// Report summarizes a completed run.
type Report struct {
	RunID       string       `json:"run_id"`
	StartedAt   time.Time    `json:"started_at"`
	ProcessID   int          `json:"process_id"`
	Source      string       `json:"source"`
	Surface     string       `json:"surface"`
	RunSize     int          `json:"run_size"`
	Missing     int          `json:"missing_records"`
	Filtered    int          `json:"filtered_count"`
	TotalPower  float64      `json:"total_power"`
	Bands       []BandResult `json:"bands"`
	BundlePath  string       `json:"bundle_path,omitempty"`
	SetFailures int          `json:"set_failures"`
}

// Options wires a run. Connect and Grabber are injected capabilities so the
// whole flow runs against a fake session in tests and mock mode.
type Options struct {
	ProcessID int
	Connect   session.Connector
	Grabber   capture.Grabber

	Source    string
	Surface   string
	Intervals []band.Interval

	OutputDir string
	Base      string

	Logger *slog.Logger
	Now    func() time.Time

	// Sleep, settle and retry knobs; zero values take the component
	// defaults. Tests inject a no-op sleeper.
	Sleep           func(time.Duration)
	SettleInterval  time.Duration
	SettleTimeout   time.Duration
	CaptureAttempts int
	CaptureDelay    time.Duration
}

func (o *Options) validate() error {
	if o.Connect == nil {
		return fmt.Errorf("run: no session connector")
	}
	if o.Grabber == nil {
		return fmt.Errorf("run: no clipboard grabber")
	}
	if len(o.Intervals) == 0 {
		return fmt.Errorf("run: no intervals requested")
	}
	for _, iv := range o.Intervals {
		if err := iv.Validate(); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}
	return nil
}

// Execute performs the run. Only a connection failure, a snapshot failure,
// an empty filter result, or cancellation abort it; capture and export
// failures degrade to warnings on the affected band. Whatever happens after
// the first session mutation, full visibility is restored and the handle
// closed before Execute returns.
func Execute(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	h, err := opts.Connect(opts.ProcessID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrConnect, err)
	}
	defer h.Close()

	repo, err := raypath.Fetch(ctx, h, raypath.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	log.Info("snapshot fetched", "rays", repo.RunSize, "missing", repo.Missing)

	universe := repo.AllIndices()
	vc := visibility.New(
		visibility.WithLogger(log),
		visibility.WithSettle(opts.SettleInterval, opts.SettleTimeout),
		visibility.WithSleeper(opts.Sleep),
	)
	// The one guaranteed action: whatever happens below, every ray is
	// visible again before this function returns.
	defer vc.RestoreAll(h, universe)

	fs, err := band.Filter(repo.Records, opts.Source, opts.Surface)
	if err != nil {
		return nil, err
	}
	log.Info("filtered", "rays", len(fs.Ordered), "total_power", fs.TotalPower)

	report := &Report{
		RunID:      uuid.NewString(),
		StartedAt:  now(),
		ProcessID:  opts.ProcessID,
		Source:     opts.Source,
		Surface:    opts.Surface,
		RunSize:    repo.RunSize,
		Missing:    repo.Missing,
		Filtered:   len(fs.Ordered),
		TotalPower: fs.TotalPower,
	}

	capt := capture.New(opts.Grabber,
		capture.WithLogger(log),
		capture.WithSleeper(opts.Sleep),
		captureRetry(opts),
	)
	writer := &export.Writer{
		Dir:     opts.OutputDir,
		Base:    opts.Base,
		RunTime: report.StartedAt,
		Source:  opts.Source,
		Surface: opts.Surface,
	}
	bundle := export.NewBundle()

	// Bands are strictly sequential: each application starts from the
	// session state the previous one left behind.
	for _, iv := range opts.Intervals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := processBand(ctx, h, vc, capt, writer, bundle, universe, fs, iv, log)
		if err != nil {
			return nil, err
		}
		report.Bands = append(report.Bands, res)
	}

	bundle.Scalars = append(bundle.Scalars,
		export.PropertyRow{ObjectKey: session.KeyRayPaths, PropertyName: session.PropRayCount, Value: fmt.Sprintf("%d", repo.RunSize)},
		export.PropertyRow{ObjectKey: session.KeyRayPaths, PropertyName: "FilteredRayCount", Value: fmt.Sprintf("%d", report.Filtered)},
		export.PropertyRow{ObjectKey: session.KeyRayPaths, PropertyName: "TotalFilteredPower", Value: fmt.Sprintf("%g", fs.TotalPower)},
	)
	if path, err := writer.WriteBundle(bundle); err != nil {
		log.Warn("bundle export failed", "error", err)
	} else {
		report.BundlePath = path
	}

	report.SetFailures = vc.SetFailures
	return report, nil
}

func captureRetry(opts Options) capture.Option {
	attempts, delay := opts.CaptureAttempts, opts.CaptureDelay
	if attempts <= 0 {
		attempts = 5
	}
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	return capture.WithRetry(attempts, delay)
}

func processBand(
	ctx context.Context,
	h session.Handle,
	vc *visibility.Controller,
	capt *capture.Adapter,
	writer *export.Writer,
	bundle *export.Bundle,
	universe []int,
	fs *band.FilteredSet,
	iv band.Interval,
	log *slog.Logger,
) (BandResult, error) {
	b := band.BandFor(fs.Ordered, fs.TotalPower, iv)
	res := BandResult{Interval: iv, Members: b.Members}

	records := memberRecords(fs, b.Members)
	for _, rec := range records {
		res.BandPower += rec.Power
	}
	if len(b.Members) == 0 {
		res.Warnings = append(res.Warnings, Warning{Class: WarnEmpty, Detail: "interval selected no rays"})
	}
	log.Info("processing band", "interval", iv.String(), "members", len(b.Members), "power", res.BandPower)

	failuresBefore := vc.SetFailures
	if err := vc.ApplyBand(ctx, h, universe, b.Members); err != nil {
		return res, err
	}
	if n := vc.SetFailures - failuresBefore; n > 0 {
		res.Warnings = append(res.Warnings, Warning{Class: WarnMutate, Detail: fmt.Sprintf("%d visibility calls failed", n)})
	}

	img, err := capt.Capture(ctx, h)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		log.Warn("capture failed", "interval", iv.String(), "error", err)
		res.Warnings = append(res.Warnings, Warning{Class: WarnCapture, Detail: err.Error()})
		img = nil
	}

	arts, err := writer.WriteBand(iv, records, img)
	if err != nil {
		log.Warn("band export failed", "interval", iv.String(), "error", err)
		res.Warnings = append(res.Warnings, Warning{Class: WarnExport, Detail: err.Error()})
	}
	res.Artifacts = arts

	powers := make([]float64, len(records))
	for i, rec := range records {
		powers[i] = rec.Power
	}
	bundle.AddArray(session.KeyRayPaths, fmt.Sprintf("BandPower_u%g_l%g", iv.UpperPercent, iv.LowerPercent), powers)
	bundle.Processed = append(bundle.Processed, iv.String())
	return res, nil
}

// memberRecords returns the band members in the filtered set's
// power-descending order.
func memberRecords(fs *band.FilteredSet, members []int) []raypath.Record {
	in := make(map[int]struct{}, len(members))
	for _, idx := range members {
		in[idx] = struct{}{}
	}
	var out []raypath.Record
	for _, rec := range fs.Ordered {
		if _, ok := in[rec.Index]; ok {
			out = append(out, rec)
		}
	}
	return out
}
