package band

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"raybands/internal/raypath"
)

func orderedSet(t *testing.T, records ...raypath.Record) *FilteredSet {
	t.Helper()
	fs, err := Filter(records, MatchAll, MatchAll)
	require.NoError(t, err)
	return fs
}

func TestInterval_Validate(t *testing.T) {
	require.NoError(t, Interval{UpperPercent: 100, LowerPercent: 0}.Validate())
	require.NoError(t, Interval{UpperPercent: 70, LowerPercent: 70}.Validate())
	require.Error(t, Interval{UpperPercent: 101, LowerPercent: 0}.Validate())
	require.Error(t, Interval{UpperPercent: 50, LowerPercent: -1}.Validate())
	require.Error(t, Interval{UpperPercent: 30, LowerPercent: 70}.Validate())
}

func TestSelectCumulative_Boundaries(t *testing.T) {
	fs := orderedSet(t,
		ray(1, 50, "A", "S1"),
		ray(2, 30, "A", "S1"),
		ray(3, 20, "A", "S1"),
	)

	require.Equal(t, []int{1, 2, 3}, SelectCumulative(fs.Ordered, fs.TotalPower, 100))
	require.Empty(t, SelectCumulative(fs.Ordered, fs.TotalPower, 0))
	require.Empty(t, SelectCumulative(fs.Ordered, 0, 50))
	require.Equal(t, []int{1, 2, 3}, SelectCumulative(fs.Ordered, fs.TotalPower, 120))
}

func TestSelectCumulative_GreedyLargestFirst(t *testing.T) {
	fs := orderedSet(t,
		ray(1, 50, "A", "S1"),
		ray(2, 30, "B", "S1"),
		ray(3, 20, "A", "S2"),
	)

	// 50% of 100 = 50; the first ray alone reaches it.
	require.Equal(t, []int{1}, SelectCumulative(fs.Ordered, fs.TotalPower, 50))
	// 51% needs the second ray too.
	require.Equal(t, []int{1, 2}, SelectCumulative(fs.Ordered, fs.TotalPower, 51))
}

func TestSelectCumulative_SpecExample(t *testing.T) {
	// Rays {(1,50,A,S1),(2,30,B,S1),(3,20,A,S2)} filtered by source A.
	all := []raypath.Record{
		ray(1, 50, "A", "S1"),
		ray(2, 30, "B", "S1"),
		ray(3, 20, "A", "S2"),
	}
	fs, err := Filter(all, "A", MatchAll)
	require.NoError(t, err)
	require.InDelta(t, 70, fs.TotalPower, 1e-12)

	// The most powerful band is the one bounded below by zero: ray 1
	// alone reaches the 50% cumulative cut (50/70 ≈ 71%).
	require.Equal(t, []int{1}, BandFor(fs.Ordered, fs.TotalPower, Interval{UpperPercent: 50, LowerPercent: 0}).Members)
	require.Equal(t, []int{3}, BandFor(fs.Ordered, fs.TotalPower, Interval{UpperPercent: 100, LowerPercent: 50}).Members)
}

func TestSelectCumulative_MinimalityAndCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(40)
		records := make([]raypath.Record, n)
		for i := range records {
			records[i] = ray(i+1, rng.Float64()*100, "A", "S")
		}
		fs := orderedSet(t, records...)

		powerOf := make(map[int]float64, n)
		for _, rec := range fs.Ordered {
			powerOf[rec.Index] = rec.Power
		}

		pct := 1 + rng.Float64()*98
		got := SelectCumulative(fs.Ordered, fs.TotalPower, pct)
		threshold := pct / 100 * fs.TotalPower

		var sum float64
		for _, idx := range got {
			sum += powerOf[idx]
		}
		require.GreaterOrEqual(t, sum, threshold-1e-9,
			"selection must reach the cumulative target")

		// Minimal: dropping the last (lowest-power) member falls short.
		if len(got) > 0 {
			require.Less(t, sum-powerOf[got[len(got)-1]], threshold,
				"selection must be minimal")
		}
	}
}

func TestBandFor_LowerZeroEqualsUpperSelection(t *testing.T) {
	fs := orderedSet(t,
		ray(1, 40, "A", "S"),
		ray(2, 35, "A", "S"),
		ray(3, 25, "A", "S"),
	)
	iv := Interval{UpperPercent: 60, LowerPercent: 0}

	require.Equal(t,
		SelectCumulative(fs.Ordered, fs.TotalPower, 60),
		BandFor(fs.Ordered, fs.TotalPower, iv).Members)
}

func TestBandFor_SetDifferencePreservesOrder(t *testing.T) {
	fs := orderedSet(t,
		ray(4, 40, "A", "S"),
		ray(9, 30, "A", "S"),
		ray(2, 20, "A", "S"),
		ray(7, 10, "A", "S"),
	)

	b := BandFor(fs.Ordered, fs.TotalPower, Interval{UpperPercent: 100, LowerPercent: 40})
	// Lower cut selects {4}; band is the upper tail in descending order.
	require.Equal(t, []int{9, 2, 7}, b.Members)
}

func TestBandFor_ContiguousPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	records := make([]raypath.Record, 25)
	for i := range records {
		records[i] = ray(i+1, 0.5+rng.Float64()*10, "A", "S")
	}
	fs := orderedSet(t, records...)

	intervals := []Interval{
		{UpperPercent: 100, LowerPercent: 70},
		{UpperPercent: 70, LowerPercent: 30},
		{UpperPercent: 30, LowerPercent: 0},
	}

	seen := make(map[int]string)
	var union []int
	for _, iv := range intervals {
		b := BandFor(fs.Ordered, fs.TotalPower, iv)
		for _, idx := range b.Members {
			if prev, dup := seen[idx]; dup {
				t.Fatalf("ray %d in both %s and %s", idx, prev, iv)
			}
			seen[idx] = iv.String()
			union = append(union, idx)
		}
	}

	all := SelectCumulative(fs.Ordered, fs.TotalPower, 100)
	require.ElementsMatch(t, all, union,
		"a contiguous partition's bands must union to every ray")
}

func TestBandFor_DegenerateInterval(t *testing.T) {
	fs := orderedSet(t, ray(1, 10, "A", "S"), ray(2, 10, "A", "S"))

	b := BandFor(fs.Ordered, fs.TotalPower, Interval{UpperPercent: 50, LowerPercent: 50})
	require.Empty(t, b.Members)
}
