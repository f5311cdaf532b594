package format

import (
	"raybands/internal/band"
	"raybands/internal/display"
	"raybands/internal/export"
	"raybands/internal/run"
	"raybands/internal/store"
)

// BandTable renders the per-band outcome of one run report.
func BandTable(r *run.Report, m Mode) string {
	t := NewTable(m)
	t.Header("Interval", "Rays", "Power", "Share", "Screenshot", "Notes")
	t.RightAlign(2, 3, 4)

	for _, b := range r.Bands {
		shot := "yes"
		if b.Artifacts.ImagePath == "" {
			shot = "-"
		}
		t.Row(
			b.Interval.String(),
			len(b.Members),
			FmtPower(b.BandPower),
			FmtShare(b.BandPower, r.TotalPower),
			shot,
			display.Warnings(b.Warnings),
		)
	}
	t.Footer("total", r.Filtered, FmtPower(r.TotalPower), "", "", display.Outcome(r))
	return t.String()
}

// RunsTable renders the run history listing. Band detail stays in GetRun.
func RunsTable(runs []store.Run, m Mode) string {
	t := NewTable(m)
	t.Header("Run", "Started", "Proc", "Source", "Surface", "Rays", "Filtered", "Power")
	t.RightAlign(6, 7, 8)
	for _, r := range runs {
		t.Row(
			Truncate(r.ID, 8),
			FmtTime(r.StartedAt),
			r.ProcessID,
			r.Source,
			r.Surface,
			r.RunSize,
			r.Filtered,
			FmtPower(r.TotalPower),
		)
	}
	return t.String()
}

// RunDetailTable renders one stored run's band rows.
func RunDetailTable(r *store.Run, m Mode) string {
	t := NewTable(m)
	t.Header("Interval", "Rays", "Power", "CSV", "Screenshot", "Notes")
	t.RightAlign(2, 3)
	for _, b := range r.Bands {
		iv := band.Interval{UpperPercent: b.UpperPercent, LowerPercent: b.LowerPercent}
		t.Row(iv.String(), b.RayCount, FmtPower(b.BandPower), b.CSVPath, b.ImagePath, b.Warning)
	}
	return t.String()
}

// PropsTable renders collected property rows for terminal browsing.
func PropsTable(rows []export.PropertyRow, m Mode) string {
	t := NewTable(m)
	t.Header("Object", "Property", "Value")
	for _, r := range rows {
		t.Row(r.ObjectKey, r.PropertyName, Truncate(r.Value, 60))
	}
	return t.String()
}
