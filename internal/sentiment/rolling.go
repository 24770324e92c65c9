package sentiment

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Rolling helpers share one convention: the window ending at index i covers
// values[i-window+1 : i+1] (the current value included) and the result at i
// is NaN unless that window is complete and free of NaN.

// trailingWindow returns the complete window ending at i, or false
func trailingWindow(values []float64, i, window int) ([]float64, bool) {
	if window <= 0 || i < window-1 {
		return nil, false
	}
	w := values[i-window+1 : i+1]
	for _, v := range w {
		if math.IsNaN(v) {
			return nil, false
		}
	}
	return w, true
}

// quantileSorted returns the q-quantile of an ascending slice using linear
// interpolation between the two nearest ranks.
func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	index := q * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// RollingQuantiles computes, for every index, the requested quantiles of
// the trailing window. The result is indexed [quantile][row].
func RollingQuantiles(values []float64, window int, qs ...float64) [][]float64 {
	out := make([][]float64, len(qs))
	for k := range qs {
		out[k] = nanSlice(len(values))
	}

	buf := make([]float64, window)
	for i := range values {
		w, ok := trailingWindow(values, i, window)
		if !ok {
			continue
		}
		copy(buf, w)
		sort.Float64s(buf)
		for k, q := range qs {
			out[k][i] = quantileSorted(buf, q)
		}
	}
	return out
}

// RollingMeanStd computes the trailing mean and sample standard deviation
// (n-1 denominator).
func RollingMeanStd(values []float64, window int) (mean, std []float64) {
	mean = nanSlice(len(values))
	std = nanSlice(len(values))
	for i := range values {
		w, ok := trailingWindow(values, i, window)
		if !ok {
			continue
		}
		mean[i], std[i] = stat.MeanStdDev(w, nil)
	}
	return mean, std
}

// RollingPercentRank returns, for every index, the percentage of the
// trailing window's values that are less than or equal to the current one.
func RollingPercentRank(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	for i := range values {
		w, ok := trailingWindow(values, i, window)
		if !ok {
			continue
		}
		current := values[i]
		count := 0
		for _, v := range w {
			if v <= current {
				count++
			}
		}
		out[i] = float64(count) / float64(window) * 100
	}
	return out
}

// PercentRank ranks every defined value against all defined values of the
// slice and returns rank/count*100. Ties share their average rank. NaN
// inputs stay NaN.
func PercentRank(values []float64) []float64 {
	out := nanSlice(len(values))

	idx := make([]int, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	n := len(idx)
	if n == 0 {
		return out
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	for start := 0; start < n; {
		end := start + 1
		for end < n && values[idx[end]] == values[idx[start]] {
			end++
		}
		// ranks start+1..end share their mean
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			out[idx[k]] = avg / float64(n) * 100
		}
		start = end
	}
	return out
}

// definedRuns returns the [start, end) bounds of each maximal run of
// non-NaN values.
func definedRuns(values []float64) [][2]int {
	var runs [][2]int
	start := -1
	for i, v := range values {
		switch {
		case math.IsNaN(v) && start >= 0:
			runs = append(runs, [2]int{start, i})
			start = -1
		case !math.IsNaN(v) && start < 0:
			start = i
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, len(values)})
	}
	return runs
}

// applyOnRuns runs an indicator over each defined run and copies its output
// back from the run's lookback onward. Everything else stays NaN.
func applyOnRuns(values []float64, lookback int, indicator func([]float64) []float64) []float64 {
	out := nanSlice(len(values))
	for _, run := range definedRuns(values) {
		segment := values[run[0]:run[1]]
		if len(segment) <= lookback {
			continue
		}
		res := indicator(segment)
		for j := lookback; j < len(segment) && j < len(res); j++ {
			out[run[0]+j] = res[j]
		}
	}
	return out
}
