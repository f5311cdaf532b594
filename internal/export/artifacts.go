package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"raybands/internal/band"
	"raybands/internal/raypath"
)

// BandArtifacts names what one processed band leaves on disk.
type BandArtifacts struct {
	CSVPath   string
	ImagePath string // empty when the capture failed
}

// Writer writes per-band artifacts under one output directory. The session
// is never touched here; writes are local file I/O and fan out in parallel.
type Writer struct {
	Dir     string
	Base    string
	RunTime time.Time
	Source  string
	Surface string
}

// WriteBand writes the band's ray CSV and, when img is non-nil, its PNG
// screenshot. A nil img is the capture-failed case: the data export still
// proceeds.
func (w *Writer) WriteBand(iv band.Interval, records []raypath.Record, img image.Image) (BandArtifacts, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return BandArtifacts{}, fmt.Errorf("create output dir: %w", err)
	}

	arts := BandArtifacts{
		CSVPath: filepath.Join(w.Dir, BandCSVName(w.Base, w.RunTime, iv, w.Source, w.Surface)),
	}
	if img != nil {
		arts.ImagePath = filepath.Join(w.Dir, ImageName(w.Base, w.RunTime, iv, w.Source, w.Surface))
	}

	var g errgroup.Group
	g.Go(func() error {
		f, err := os.Create(arts.CSVPath)
		if err != nil {
			return fmt.Errorf("create band csv: %w", err)
		}
		defer f.Close()
		if err := WriteBandCSV(f, records); err != nil {
			return fmt.Errorf("band csv: %w", err)
		}
		return f.Close()
	})
	if img != nil {
		g.Go(func() error {
			f, err := os.Create(arts.ImagePath)
			if err != nil {
				return fmt.Errorf("create screenshot: %w", err)
			}
			defer f.Close()
			if err := png.Encode(f, img); err != nil {
				return fmt.Errorf("encode screenshot: %w", err)
			}
			return f.Close()
		})
	}
	if err := g.Wait(); err != nil {
		return arts, err
	}
	return arts, nil
}

// WriteBundle writes the structured bundle next to the band artifacts.
func (w *Writer) WriteBundle(b *Bundle) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("%s_%s_bundle.json",
		Sanitize(w.Base), w.RunTime.Format("20060102-150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create bundle: %w", err)
	}
	defer f.Close()
	if err := b.Write(f); err != nil {
		return "", err
	}
	return path, f.Close()
}
