package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"raybands/internal/band"
)

// Profile is the run configuration file: which process to drive, how to
// filter, which intervals to extract, and where artifacts go. Profiles
// replace the original tool's interactive selection dialogs.
type Profile struct {
	ProcessID int             `yaml:"process_id" json:"process_id"`
	Source    string          `yaml:"source" json:"source"`
	Surface   string          `yaml:"surface" json:"surface"`
	Intervals []band.Interval `yaml:"intervals" json:"intervals"`
	OutputDir string          `yaml:"output_dir" json:"output_dir"`
	Base      string          `yaml:"base" json:"base"`
}

// LoadProfileFromPath reads a profile file. Format is detected by extension
// (.yaml/.yml vs .json) or, failing that, by content.
func LoadProfileFromPath(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return LoadProfile(data, filepath.Ext(path))
}

// LoadProfile parses a profile from bytes. ext is the file extension for
// the format hint; empty means detect from content.
func LoadProfile(data []byte, ext string) (*Profile, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}

	var p Profile
	switch ext {
	case ".yaml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse profile yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse profile json: %w", err)
		}
	default:
		// Detect: JSON starts with an object; anything else is YAML.
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			if err := json.Unmarshal(data, &p); err != nil {
				return nil, fmt.Errorf("parse profile json: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse profile yaml: %w", err)
		}
	}

	p.applyDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) applyDefaults() {
	if p.Source == "" {
		p.Source = band.MatchAll
	}
	if p.Surface == "" {
		p.Surface = band.MatchAll
	}
	if p.OutputDir == "" {
		p.OutputDir = filepath.Join(".raybands", "output")
	}
	if p.Base == "" {
		p.Base = "raypaths"
	}
}

// Options maps the profile onto run options, filling empty fields with the
// profile defaults. The caller still wires the session connector, the
// grabber and the logger.
func (p *Profile) Options() Options {
	p.applyDefaults()
	return Options{
		ProcessID: p.ProcessID,
		Source:    p.Source,
		Surface:   p.Surface,
		Intervals: p.Intervals,
		OutputDir: p.OutputDir,
		Base:      p.Base,
	}
}

// validate checks the intervals the profile does carry. An empty interval
// list is allowed here: flags may supply the intervals after loading, and
// the run options reject a merged result that still has none.
func (p *Profile) validate() error {
	for _, iv := range p.Intervals {
		if err := iv.Validate(); err != nil {
			return fmt.Errorf("profile: %w", err)
		}
	}
	return nil
}
