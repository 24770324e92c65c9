package sentiment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertNaN(t *testing.T, v float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, math.IsNaN(v), msgAndArgs...)
}

func TestQuantileSorted(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.2, 1.8},
		{0.5, 3},
		{0.8, 4.2},
		{1, 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, quantileSorted(sorted, tt.q), 1e-12, "q=%v", tt.q)
	}

	assertNaN(t, quantileSorted(nil, 0.5))
}

func TestRollingQuantiles(t *testing.T) {
	values := []float64{1, 2, 3, math.NaN(), 5, 6, 7}

	q := RollingQuantiles(values, 3, 0.5, 1)
	median, highest := q[0], q[1]

	assertNaN(t, median[0])
	assertNaN(t, median[1])
	assert.Equal(t, 2.0, median[2])
	assert.Equal(t, 3.0, highest[2])
	for i := 3; i <= 5; i++ {
		assertNaN(t, median[i], "window containing NaN at %d", i)
	}
	assert.Equal(t, 6.0, median[6])
	assert.Equal(t, 7.0, highest[6])
}

func TestRollingQuantilesDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	RollingQuantiles(values, 3, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestRollingMeanStd(t *testing.T) {
	mean, std := RollingMeanStd([]float64{1, 2, 3, 4}, 3)

	assertNaN(t, mean[1])
	assertNaN(t, std[1])
	assert.InDelta(t, 2.0, mean[2], 1e-12)
	assert.InDelta(t, 1.0, std[2], 1e-12)
	assert.InDelta(t, 3.0, mean[3], 1e-12)
	assert.InDelta(t, 1.0, std[3], 1e-12)
}

func TestRollingPercentRank(t *testing.T) {
	rank := RollingPercentRank([]float64{4, 3, 2, 1, 5, 5}, 4)

	for i := 0; i < 3; i++ {
		assertNaN(t, rank[i])
	}
	assert.Equal(t, 25.0, rank[3])
	assert.Equal(t, 100.0, rank[4])
	// ties count as less than or equal
	assert.Equal(t, 100.0, rank[5])
}

func TestPercentRank(t *testing.T) {
	rank := PercentRank([]float64{10, 20, 20, math.NaN(), 30})

	assert.InDelta(t, 25.0, rank[0], 1e-12)
	assert.InDelta(t, 62.5, rank[1], 1e-12)
	assert.InDelta(t, 62.5, rank[2], 1e-12)
	assertNaN(t, rank[3])
	assert.InDelta(t, 100.0, rank[4], 1e-12)

	for _, v := range PercentRank([]float64{math.NaN(), math.NaN()}) {
		assertNaN(t, v)
	}
}

func TestDefinedRuns(t *testing.T) {
	nan := math.NaN()
	runs := definedRuns([]float64{nan, 1, 2, nan, nan, 3, 4, 5})
	assert.Equal(t, [][2]int{{1, 3}, {5, 8}}, runs)

	assert.Empty(t, definedRuns([]float64{nan}))
}

func TestApplyOnRuns(t *testing.T) {
	nan := math.NaN()
	values := []float64{nan, 1, 2, 3, nan, 4, 5}
	double := func(seg []float64) []float64 {
		out := make([]float64, len(seg))
		for i, v := range seg {
			out[i] = 2 * v
		}
		return out
	}

	out := applyOnRuns(values, 1, double)

	assertNaN(t, out[0])
	assertNaN(t, out[1], "inside lookback")
	assert.Equal(t, 4.0, out[2])
	assert.Equal(t, 6.0, out[3])
	assertNaN(t, out[4])
	assertNaN(t, out[5], "inside lookback")
	assert.Equal(t, 10.0, out[6])
}
