package format

import (
	"fmt"
	"time"
)

// FmtPower formats an optical power value compactly. Four significant
// digits is enough for a summary table; the CSVs keep full precision.
func FmtPower(p float64) string {
	return fmt.Sprintf("%.4g", p)
}

// FmtShare formats a band's share of total power as a percentage.
// Returns "-" when the total is zero so the table never divides by zero.
func FmtShare(part, total float64) string {
	if total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", part/total*100)
}

// FmtTime formats a run timestamp for listings.
func FmtTime(ts time.Time) string {
	return ts.Format("2006-01-02 15:04")
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
