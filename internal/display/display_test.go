package display_test

import (
	"testing"

	"raybands/internal/display"
	"raybands/internal/run"
)

func TestWarningLabel(t *testing.T) {
	if got := display.WarningLabel(run.WarnCapture); got != "no screenshot" {
		t.Errorf("WarningLabel(capture) = %q", got)
	}
	if got := display.WarningLabel("weird"); got != "weird" {
		t.Errorf("unknown class should pass through, got %q", got)
	}
}

func TestWarnings_DeduplicatesAndOrders(t *testing.T) {
	ws := []run.Warning{
		{Class: run.WarnMutate, Detail: "ray 3"},
		{Class: run.WarnCapture, Detail: "timeout"},
		{Class: run.WarnMutate, Detail: "ray 7"},
	}
	got := display.Warnings(ws)
	want := "visibility set failed; no screenshot"
	if got != want {
		t.Errorf("Warnings() = %q, want %q", got, want)
	}
	if display.Warnings(nil) != "" {
		t.Error("no warnings should render empty")
	}
}

func TestOutcome(t *testing.T) {
	clean := &run.Report{Bands: []run.BandResult{{}}}
	if got := display.Outcome(clean); got != "ok" {
		t.Errorf("Outcome(clean) = %q", got)
	}
	bad := &run.Report{
		Bands:       []run.BandResult{{Warnings: []run.Warning{{Class: run.WarnEmpty}}}},
		SetFailures: 2,
	}
	if got := display.Outcome(bad); got != "degraded (1 warnings, 2 set failures)" {
		t.Errorf("Outcome(bad) = %q", got)
	}
}
