package run

import (
	"strings"

	"raybands/internal/store"
)

// ReportToRun converts a report into its run-history row set.
func ReportToRun(r *Report) *store.Run {
	out := &store.Run{
		ID:         r.RunID,
		StartedAt:  r.StartedAt,
		ProcessID:  r.ProcessID,
		Source:     r.Source,
		Surface:    r.Surface,
		RunSize:    r.RunSize,
		Filtered:   r.Filtered,
		TotalPower: r.TotalPower,
	}
	for _, b := range r.Bands {
		row := store.BandRow{
			UpperPercent: b.Interval.UpperPercent,
			LowerPercent: b.Interval.LowerPercent,
			RayCount:     len(b.Members),
			BandPower:    b.BandPower,
			CSVPath:      b.Artifacts.CSVPath,
			ImagePath:    b.Artifacts.ImagePath,
		}
		if len(b.Warnings) > 0 {
			var parts []string
			for _, w := range b.Warnings {
				parts = append(parts, w.Class+": "+w.Detail)
			}
			row.Warning = strings.Join(parts, "; ")
		}
		out.Bands = append(out.Bands, row)
	}
	return out
}
