package run

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"raybands/internal/band"
	"raybands/internal/session"
)

const yamlProfile = `
process_id: 4242
source: "Laser A"
intervals:
  - upper: 100
    lower: 70
  - upper: 70
    lower: 0
output_dir: out
base: bench1
`

const jsonProfile = `{
  "process_id": 7,
  "surface": "Detector",
  "intervals": [{"upper": 100, "lower": 0}]
}`

func TestLoadProfile_YAML(t *testing.T) {
	p, err := LoadProfile([]byte(yamlProfile), ".yaml")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	want := &Profile{
		ProcessID: 4242,
		Source:    "Laser A",
		Surface:   "*",
		Intervals: []band.Interval{
			{UpperPercent: 100, LowerPercent: 70},
			{UpperPercent: 70, LowerPercent: 0},
		},
		OutputDir: "out",
		Base:      "bench1",
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadProfile_JSONDetectedByContent(t *testing.T) {
	p, err := LoadProfile([]byte(jsonProfile), "")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.ProcessID != 7 || p.Surface != "Detector" || p.Source != "*" {
		t.Errorf("profile = %+v", p)
	}
	if p.OutputDir == "" || p.Base == "" {
		t.Error("defaults not applied")
	}
}

func TestLoadProfile_YmlExtension(t *testing.T) {
	if _, err := LoadProfile([]byte(yamlProfile), ".yml"); err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
}

func TestLoadProfile_NoIntervalsDeferred(t *testing.T) {
	// Intervals may come from flags after loading; the loader accepts an
	// empty list and the run options reject a merged result without one.
	p, err := LoadProfile([]byte("process_id: 1\n"), ".yaml")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(p.Intervals) != 0 {
		t.Errorf("intervals = %v, want none", p.Intervals)
	}

	opts := p.Options()
	opts.Connect = func(int) (session.Handle, error) { return session.NewFake(), nil }
	opts.Grabber = goodGrabber()
	if err := opts.validate(); err == nil {
		t.Error("merged options without intervals must not validate")
	}
}

func TestLoadProfile_BadInterval(t *testing.T) {
	bad := "intervals:\n  - upper: 10\n    lower: 90\n"
	if _, err := LoadProfile([]byte(bad), ".yaml"); err == nil {
		t.Error("expected error for inverted interval")
	}
}

func TestLoadProfileFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(path, []byte(yamlProfile), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfileFromPath(path)
	if err != nil {
		t.Fatalf("LoadProfileFromPath: %v", err)
	}
	if p.ProcessID != 4242 {
		t.Errorf("ProcessID = %d, want 4242", p.ProcessID)
	}
}
