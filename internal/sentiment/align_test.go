package sentiment

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func series(name string, offsets []int, values []float64) Series {
	points := make([]Point, len(offsets))
	for i, off := range offsets {
		points[i] = Point{Date: day(off), Value: values[i]}
	}
	return Series{Name: name, Points: points}
}

func TestMerge(t *testing.T) {
	t.Run("union of dates sorted ascending", func(t *testing.T) {
		a := series("a", []int{5, 1, 3}, []float64{50, 10, 30})
		b := series("b", []int{2, 3, 6}, []float64{2, 3, 6})

		frame, err := Merge(a, b)
		require.NoError(t, err)

		want := []time.Time{day(1), day(2), day(3), day(5), day(6)}
		assert.Equal(t, want, frame.Dates)
		assert.Equal(t, []string{"a", "b"}, frame.Names)

		for i := 1; i < frame.Len(); i++ {
			assert.True(t, frame.Dates[i].After(frame.Dates[i-1]), "dates must be strictly increasing")
		}

		colA, err := frame.Column("a")
		require.NoError(t, err)
		assert.Equal(t, 10.0, colA[0])
		assert.True(t, math.IsNaN(colA[1]))
		assert.Equal(t, 30.0, colA[2])
		assert.Equal(t, 50.0, colA[3])
		assert.True(t, math.IsNaN(colA[4]))

		colB, err := frame.Column("b")
		require.NoError(t, err)
		assert.True(t, math.IsNaN(colB[0]))
		assert.Equal(t, 2.0, colB[1])
		assert.Equal(t, 3.0, colB[2])
		assert.True(t, math.IsNaN(colB[3]))
		assert.Equal(t, 6.0, colB[4])
	})

	t.Run("every input date appears exactly once", func(t *testing.T) {
		a := series("a", []int{0, 2, 4, 6, 8}, []float64{1, 2, 3, 4, 5})
		b := series("b", []int{1, 2, 3}, []float64{1, 2, 3})
		c := series("c", []int{8, 9}, []float64{1, 2})

		frame, err := Merge(a, b, c)
		require.NoError(t, err)

		counts := make(map[time.Time]int)
		for _, d := range frame.Dates {
			counts[d]++
		}
		for _, s := range []Series{a, b, c} {
			for _, p := range s.Points {
				assert.Equal(t, 1, counts[p.Date], "date %s", p.Date)
			}
		}
		assert.Len(t, frame.Dates, 10)
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		a := Series{Name: "a", Points: []Point{{Date: day(1).Add(15 * time.Hour), Value: 1}}}
		b := Series{Name: "b", Points: []Point{{Date: day(1), Value: 2}}}

		frame, err := Merge(a, b)
		require.NoError(t, err)
		require.Equal(t, 1, frame.Len())
		assert.Equal(t, 1.0, frame.Columns["a"][0])
		assert.Equal(t, 2.0, frame.Columns["b"][0])
	})

	t.Run("repeated date keeps last value", func(t *testing.T) {
		a := series("a", []int{1, 1, 2}, []float64{1, 9, 2})

		frame, err := Merge(a)
		require.NoError(t, err)
		assert.Equal(t, []float64{9, 2}, frame.Columns["a"])
	})

	errorCases := []struct {
		name   string
		series []Series
	}{
		{"no series", nil},
		{"unnamed series", []Series{series("", []int{1}, []float64{1})}},
		{"duplicate names", []Series{series("a", []int{1}, []float64{1}), series("a", []int{2}, []float64{2})}},
		{"empty series", []Series{{Name: "a"}}},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Merge(tc.series...)
			assert.Error(t, err)
		})
	}
}

func TestForwardFill(t *testing.T) {
	a := series("a", []int{1, 3, 5}, []float64{10, 30, 50})
	b := series("b", []int{2, 3, 6}, []float64{2, 3, 6})

	frame, err := Merge(a, b)
	require.NoError(t, err)
	ForwardFill(frame)

	// dates: 1 2 3 5 6
	colA := frame.Columns["a"]
	assert.Equal(t, []float64{10, 10, 30, 50, 50}, colA)

	colB := frame.Columns["b"]
	assert.True(t, math.IsNaN(colB[0]), "leading gap must stay undefined")
	assert.Equal(t, []float64{2, 3, 3, 6}, colB[1:])
}

func TestForwardFillKeepsLatestPriorValue(t *testing.T) {
	frame := &Frame{
		Dates:   []time.Time{day(0), day(1), day(2), day(3), day(4), day(5)},
		Names:   []string{"x"},
		Columns: map[string][]float64{"x": {math.NaN(), math.NaN(), 4, math.NaN(), 7, math.NaN()}},
	}
	ForwardFill(frame)

	col := frame.Columns["x"]
	assert.True(t, math.IsNaN(col[0]))
	assert.True(t, math.IsNaN(col[1]))
	assert.Equal(t, []float64{4, 4, 7, 7}, col[2:])
}

func TestFrameColumn(t *testing.T) {
	frame := &Frame{Columns: map[string][]float64{"a": {1}}}

	_, err := frame.Column("missing")
	assert.Error(t, err)

	col, err := frame.Column("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, col)
}
