package band

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIntervals parses a comma-separated list of "upper-lower" percent
// pairs, e.g. "100-70,70-30,30-0". Each interval is validated; a single
// number "70" is shorthand for "70-0".
func ParseIntervals(s string) ([]Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("no intervals given")
	}

	var out []Interval
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		iv, err := parseInterval(part)
		if err != nil {
			return nil, fmt.Errorf("interval %q: %w", part, err)
		}
		out = append(out, iv)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no intervals given")
	}
	return out, nil
}

func parseInterval(s string) (Interval, error) {
	bounds := strings.SplitN(s, "-", 2)
	upper, err := strconv.ParseFloat(strings.TrimSpace(bounds[0]), 64)
	if err != nil {
		return Interval{}, fmt.Errorf("bad upper bound: %w", err)
	}
	var lower float64
	if len(bounds) == 2 {
		lower, err = strconv.ParseFloat(strings.TrimSpace(bounds[1]), 64)
		if err != nil {
			return Interval{}, fmt.Errorf("bad lower bound: %w", err)
		}
	}
	iv := Interval{UpperPercent: upper, LowerPercent: lower}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}
