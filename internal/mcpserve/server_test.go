package mcpserve

import (
	"context"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"raybands/internal/capture"
	"raybands/internal/logging"
	"raybands/internal/session"
)

func testServer(t *testing.T, fake *session.Fake) *Server {
	t.Helper()
	dir := t.TempDir()
	return NewServer(Options{
		Connect: func(pid int) (session.Handle, error) { return fake, nil },
		Grabber: capture.GrabberFunc(func() (image.Image, error) {
			return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
		}),
		DBPath: filepath.Join(dir, "runs.db"),
		Logger: logging.Discard(),
	})
}

func TestRunBands_RoundTrip(t *testing.T) {
	fake := session.NewFake(
		session.FakeRay{Power: 50, Source: "A", Surface: "S1"},
		session.FakeRay{Power: 30, Source: "A", Surface: "S1"},
		session.FakeRay{Power: 20, Source: "A", Surface: "S1"},
	)
	srv := testServer(t, fake)
	dir := t.TempDir()

	_, out, err := srv.handleRunBands(context.Background(), nil, runBandsInput{
		ProcessID: 7,
		Intervals: "70-0,100-70",
		OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("run_bands: %v", err)
	}
	if out.RunID == "" {
		t.Fatal("expected a run ID")
	}
	if out.RunSize != 3 || out.Filtered != 3 {
		t.Errorf("run_size=%d filtered=%d, want 3/3", out.RunSize, out.Filtered)
	}
	if len(out.Bands) != 2 {
		t.Fatalf("expected 2 bands, got %d", len(out.Bands))
	}
	if out.Bands[0].Interval != "[70%,0%]" || out.Bands[0].Rays != 2 {
		t.Errorf("first band = %+v", out.Bands[0])
	}
	if out.Outcome != "ok" {
		t.Errorf("outcome = %q", out.Outcome)
	}

	// The run was recorded; get_report returns the band rows.
	_, rep, err := srv.handleGetReport(context.Background(), nil, getReportInput{RunID: out.RunID})
	if err != nil {
		t.Fatalf("get_report: %v", err)
	}
	if rep.ProcessID != 7 || len(rep.Bands) != 2 {
		t.Errorf("report = %+v", rep)
	}

	_, list, err := srv.handleListRuns(context.Background(), nil, listRunsInput{})
	if err != nil {
		t.Fatalf("list_runs: %v", err)
	}
	if list.Total != 1 || list.Runs[0].RunID != out.RunID {
		t.Errorf("listing = %+v", list)
	}
}

func TestRunBands_BadIntervals(t *testing.T) {
	srv := testServer(t, session.NewFake())
	_, _, err := srv.handleRunBands(context.Background(), nil, runBandsInput{
		ProcessID: 1,
		Intervals: "50-70",
	})
	if err == nil || !strings.Contains(err.Error(), "interval") {
		t.Fatalf("expected interval error, got %v", err)
	}
}

func TestRunBands_SingleFlight(t *testing.T) {
	srv := testServer(t, session.NewFake())
	srv.mu.Lock()
	srv.running = true
	srv.mu.Unlock()

	_, _, err := srv.handleRunBands(context.Background(), nil, runBandsInput{
		ProcessID: 1,
		Intervals: "100-0",
	})
	if err == nil || !strings.Contains(err.Error(), "already in progress") {
		t.Fatalf("expected single-flight rejection, got %v", err)
	}
}

func TestGetReport_RequiresID(t *testing.T) {
	srv := testServer(t, session.NewFake())
	_, _, err := srv.handleGetReport(context.Background(), nil, getReportInput{})
	if err == nil {
		t.Fatal("expected error for empty run_id")
	}
}
