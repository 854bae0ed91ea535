package pipeline

import (
	"math"
	"sort"
)

// Unclassified marks a value that could not be placed in any bin.
const Unclassified = -1

// Classify places each value into one of bins equal-width classes spanning
// the observed minimum and maximum. Intervals are closed on the right, and
// the lowest edge is nudged down by 0.1% of the range so the minimum lands
// in class 0. When every value is the same the range is widened by 0.1%
// either side and all values fall in the lower-middle class. NaN and
// infinite values, or a bins count below one, yield Unclassified.
func Classify(values []float64, bins int) []int {
	classes := make([]int, len(values))
	for i := range classes {
		classes[i] = Unclassified
	}
	if bins < 1 {
		return classes
	}

	lo, hi, ok := finiteRange(values)
	if !ok {
		return classes
	}

	if lo == hi {
		mid := (bins - 1) / 2
		for i, v := range values {
			if isFinite(v) {
				classes[i] = mid
			}
		}
		return classes
	}

	edges := make([]float64, bins+1)
	step := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + step*float64(i)
	}
	edges[bins] = hi
	edges[0] -= (hi - lo) * 0.001

	for i, v := range values {
		if !isFinite(v) {
			continue
		}
		// first edge >= v; v sits in (edges[idx-1], edges[idx]]
		idx := sort.SearchFloat64s(edges, v)
		switch {
		case idx == 0 && v == edges[0]:
			classes[i] = 0
		case idx >= 1 && idx <= bins:
			classes[i] = idx - 1
		}
	}
	return classes
}

func finiteRange(values []float64) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	found := false
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		found = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, found
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
