package format_test

import (
	"strings"
	"testing"
	"time"

	"raybands/internal/band"
	"raybands/internal/export"
	"raybands/internal/format"
	"raybands/internal/run"
	"raybands/internal/store"
)

func TestASCII_BasicTable(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Interval", "Power")
	tb.Row("[100%,70%]", 12.5)
	out := tb.String()

	if !strings.Contains(out, "Interval") {
		t.Errorf("expected header in output:\n%s", out)
	}
	if !strings.Contains(out, "12.5") {
		t.Errorf("expected value in output:\n%s", out)
	}
	// ASCII uses box-drawing characters from StyleLight.
	if !strings.Contains(out, "───") {
		t.Errorf("expected box-drawing characters in ASCII output:\n%s", out)
	}
}

func TestMarkdown_BasicTable(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Interval", "Power")
	tb.Row("[100%,70%]", 12.5)
	tb.Footer("total", 12.5)
	out := tb.String()

	if !strings.Contains(out, "| Interval") {
		t.Errorf("expected markdown header:\n%s", out)
	}
	if !strings.Contains(out, "---") {
		t.Errorf("expected markdown separator:\n%s", out)
	}
	if !strings.Contains(out, "total") {
		t.Errorf("expected footer in output:\n%s", out)
	}
}

func TestBandTable(t *testing.T) {
	r := &run.Report{
		Filtered:   3,
		TotalPower: 100,
		Bands: []run.BandResult{
			{
				Interval:  band.Interval{UpperPercent: 70},
				Members:   []int{1, 2},
				BandPower: 75,
				Artifacts: export.BandArtifacts{CSVPath: "a.csv", ImagePath: "a.png"},
			},
			{
				Interval:  band.Interval{UpperPercent: 100, LowerPercent: 70},
				Members:   []int{3},
				BandPower: 25,
				Artifacts: export.BandArtifacts{CSVPath: "b.csv"},
				Warnings:  []run.Warning{{Class: run.WarnCapture, Detail: "timeout"}},
			},
		},
	}

	out := format.BandTable(r, format.ASCII)
	for _, want := range []string{"[70%,0%]", "[100%,70%]", "75.0%", "no screenshot", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in band table:\n%s", want, out)
		}
	}
	// Capture-failed band has no screenshot mark.
	if strings.Count(out, "yes") != 1 {
		t.Errorf("expected exactly one screenshot mark:\n%s", out)
	}
}

func TestRunsTable(t *testing.T) {
	runs := []store.Run{
		{
			ID:         "0b1f2a3c-very-long-uuid",
			StartedAt:  time.Date(2026, 8, 26, 9, 30, 0, 0, time.UTC),
			ProcessID:  4242,
			Source:     "LaserA",
			Surface:    "*",
			RunSize:    120,
			Filtered:   87,
			TotalPower: 12.75,
		},
	}
	out := format.RunsTable(runs, format.Markdown)
	for _, want := range []string{"2026-08-26 09:30", "LaserA", "4242", "12.75"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in runs table:\n%s", want, out)
		}
	}
	if strings.Contains(out, "very-long-uuid") {
		t.Errorf("run ID should be truncated:\n%s", out)
	}
}

func TestPropsTable(t *testing.T) {
	rows := []export.PropertyRow{
		{ObjectKey: "Sources.LaserA", PropertyName: "Power", Value: "1.5"},
		{ObjectKey: "Sources.LaserA", PropertyName: "Status", Value: "No such object"},
	}
	out := format.PropsTable(rows, format.ASCII)
	if !strings.Contains(out, "Sources.LaserA") || !strings.Contains(out, "No such object") {
		t.Errorf("unexpected props table:\n%s", out)
	}
}

func TestFmtShare(t *testing.T) {
	if got := format.FmtShare(25, 100); got != "25.0%" {
		t.Errorf("FmtShare(25,100) = %q", got)
	}
	if got := format.FmtShare(1, 0); got != "-" {
		t.Errorf("FmtShare with zero total = %q, want -", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abcdef", 3, "abc"},
	}
	for _, tc := range tests {
		if got := format.Truncate(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}
