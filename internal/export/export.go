// Package export writes the run's durable artifacts: property CSV tables,
// per-band ray CSVs, PNG screenshots, and the structured JSON bundle.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"raybands/internal/band"
	"raybands/internal/raypath"
)

// PropertyRow is one line of the tabular property export. Value carries
// either the fetched value's display form or the failure status string, so
// a failed fetch still produces a row.
type PropertyRow struct {
	ObjectKey    string `json:"object_key"`
	PropertyName string `json:"property_name"`
	Value        string `json:"value"`
}

// WritePropertyCSV writes rows as UTF-8 CSV with the fixed header. Internal
// quotes are doubled per RFC 4180 (encoding/csv's default).
func WritePropertyCSV(w io.Writer, rows []PropertyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ObjectKey", "PropertyName", "CurrentValue_Or_Status"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.ObjectKey, r.PropertyName, r.Value}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBandCSV writes one band's member rays, highest power first.
func WriteBandCSV(w io.Writer, records []raypath.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"RayIndex", "Power", "Source", "FinalSurface"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Index),
			strconv.FormatFloat(rec.Power, 'g', -1, 64),
			rec.Source,
			rec.Surface,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Sanitize makes a name safe for file names and bundle keys: anything
// outside [A-Za-z0-9._-] becomes an underscore, and the wildcard predicate
// reads as "all".
func Sanitize(name string) string {
	if name == "" || name == "*" {
		return "all"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func percentToken(f float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(f, 'g', -1, 64), ".", "p")
}

// ImageName builds the deterministic screenshot file name for one interval:
// base, run timestamp, interval bounds, sanitized filter names.
func ImageName(base string, runTime time.Time, iv band.Interval, source, surface string) string {
	return fmt.Sprintf("%s_%s_u%s_l%s_src-%s_surf-%s.png",
		Sanitize(base),
		runTime.Format("20060102-150405"),
		percentToken(iv.UpperPercent),
		percentToken(iv.LowerPercent),
		Sanitize(source),
		Sanitize(surface),
	)
}

// BandCSVName matches ImageName for the band's data file.
func BandCSVName(base string, runTime time.Time, iv band.Interval, source, surface string) string {
	name := ImageName(base, runTime, iv, source, surface)
	return strings.TrimSuffix(name, ".png") + ".csv"
}
