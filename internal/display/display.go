// Package display maps internal codes to the labels shown in tables and logs.
package display

import (
	"fmt"
	"strings"

	"raybands/internal/run"
)

var warningLabels = map[string]string{
	run.WarnMutate:  "visibility set failed",
	run.WarnCapture: "no screenshot",
	run.WarnExport:  "export failed",
	run.WarnEmpty:   "empty band",
}

// WarningLabel returns the human label for a warning class. Unknown classes
// pass through unchanged so nothing is silently hidden.
func WarningLabel(class string) string {
	if l, ok := warningLabels[class]; ok {
		return l
	}
	return class
}

// Warnings renders a compact notes column: empty for a clean band, otherwise
// the distinct labels joined by "; " in first-seen order.
func Warnings(ws []run.Warning) string {
	if len(ws) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(ws))
	var labels []string
	for _, w := range ws {
		l := WarningLabel(w.Class)
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	return strings.Join(labels, "; ")
}

// Outcome summarizes a whole report in one word, with a count when degraded.
func Outcome(r *run.Report) string {
	n := 0
	for _, b := range r.Bands {
		n += len(b.Warnings)
	}
	if n == 0 && r.SetFailures == 0 {
		return "ok"
	}
	return fmt.Sprintf("degraded (%d warnings, %d set failures)", n, r.SetFailures)
}
