// Package band is the ray-path power-interval partitioning engine: it
// narrows a snapshot to rays matching a source/surface predicate, ranks them
// by power, and computes the index sets whose cumulative power falls within
// requested percentile intervals.
package band

import (
	"errors"
	"sort"

	"raybands/internal/raypath"
)

// MatchAll is the wildcard predicate sentinel: it matches every value.
const MatchAll = "*"

// ErrNoMatchingRays is returned when filtering leaves nothing to analyze.
// Fatal to the current run; never retried.
var ErrNoMatchingRays = errors.New("no matching rays")

// FilteredSet is the power-descending view of the rays that passed the
// filter. Read-only; recomputed whenever the predicate changes.
type FilteredSet struct {
	// Ordered is sorted by power descending. Ties keep original index
	// order.
	Ordered []raypath.Record

	// TotalPower is the power sum over Ordered, fixed before any band
	// extraction.
	TotalPower float64

	Source  string
	Surface string
}

func matches(pred, value string) bool {
	return pred == MatchAll || pred == value
}

// Filter selects the usable records matching both predicates and ranks them
// by power descending. Records with a missing power, source, or surface are
// excluded before filtering: missing is unusable, not zero. An empty result
// is ErrNoMatchingRays.
func Filter(records []raypath.Record, source, surface string) (*FilteredSet, error) {
	fs := &FilteredSet{Source: source, Surface: surface}
	for _, rec := range records {
		if !rec.Usable() {
			continue
		}
		if !matches(source, rec.Source) || !matches(surface, rec.Surface) {
			continue
		}
		fs.Ordered = append(fs.Ordered, rec)
		fs.TotalPower += rec.Power
	}
	if len(fs.Ordered) == 0 {
		return nil, ErrNoMatchingRays
	}

	// Stable keeps equal powers in original index order.
	sort.SliceStable(fs.Ordered, func(i, j int) bool {
		return fs.Ordered[i].Power > fs.Ordered[j].Power
	})
	return fs, nil
}

// Indices returns the ray indices of the ordered set, highest power first.
func (fs *FilteredSet) Indices() []int {
	out := make([]int, len(fs.Ordered))
	for i, rec := range fs.Ordered {
		out[i] = rec.Index
	}
	return out
}
