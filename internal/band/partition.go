package band

import (
	"fmt"

	"raybands/internal/raypath"
)

// epsilon tolerates floating-point summation drift in the cumulative walk
// and guards division by a negligible total.
const epsilon = 1e-9

// Interval is one user-supplied percentile cut pair, upper inclusive of the
// more powerful rays.
type Interval struct {
	UpperPercent float64 `yaml:"upper" json:"upper"`
	LowerPercent float64 `yaml:"lower" json:"lower"`
}

// Validate checks the interval's range invariants before use.
func (iv Interval) Validate() error {
	if iv.UpperPercent < 0 || iv.UpperPercent > 100 {
		return fmt.Errorf("interval upper %v out of [0,100]", iv.UpperPercent)
	}
	if iv.LowerPercent < 0 || iv.LowerPercent > 100 {
		return fmt.Errorf("interval lower %v out of [0,100]", iv.LowerPercent)
	}
	if iv.UpperPercent < iv.LowerPercent {
		return fmt.Errorf("interval upper %v below lower %v", iv.UpperPercent, iv.LowerPercent)
	}
	return nil
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%g%%,%g%%]", iv.UpperPercent, iv.LowerPercent)
}

// Band is the rays whose cumulative power position falls inside one
// interval. Members keeps the power-descending order of the filtered set.
type Band struct {
	Interval Interval
	Members  []int
}

// SelectCumulative walks the power-descending sequence accumulating power
// and returns the indices visited before the accumulation reaches
// percentTarget percent of totalPower. Largest-first accumulation is the
// policy: the result is always the fewest, most powerful rays that reach the
// target, never an arbitrary subset.
func SelectCumulative(ordered []raypath.Record, totalPower, percentTarget float64) []int {
	if totalPower <= epsilon || percentTarget <= epsilon {
		return nil
	}
	if percentTarget >= 100 {
		// Fast path: avoids accumulation error at the boundary.
		out := make([]int, len(ordered))
		for i, rec := range ordered {
			out[i] = rec.Index
		}
		return out
	}

	threshold := percentTarget / 100 * totalPower
	var acc float64
	var out []int
	for _, rec := range ordered {
		out = append(out, rec.Index)
		acc += rec.Power
		if acc >= threshold-epsilon {
			break
		}
	}
	return out
}

// BandFor computes the rays between the interval's lower and upper
// percentile cuts as the order-preserving difference of two cumulative
// selections. This places rays by cumulative position; it is not an
// independent re-accumulation between the two cuts.
func BandFor(ordered []raypath.Record, totalPower float64, iv Interval) Band {
	upper := SelectCumulative(ordered, totalPower, iv.UpperPercent)
	if iv.LowerPercent == 0 {
		return Band{Interval: iv, Members: upper}
	}
	lower := SelectCumulative(ordered, totalPower, iv.LowerPercent)

	in := make(map[int]struct{}, len(lower))
	for _, idx := range lower {
		in[idx] = struct{}{}
	}
	var members []int
	for _, idx := range upper {
		if _, ok := in[idx]; !ok {
			members = append(members, idx)
		}
	}
	return Band{Interval: iv, Members: members}
}
