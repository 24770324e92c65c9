package sentiment

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallResult() *Result {
	nan := math.NaN()
	frame := &Frame{
		Dates: []time.Time{day(0), day(1), day(2)},
		Names: []string{ColHSI, ColVHSI, ColNetBuy, ColAHPremium},
		Columns: map[string][]float64{
			ColHSI:       {16788.55, 16645.98, 16190.02},
			ColVHSI:      {23.1, 24, 25.5},
			ColNetBuy:    {nan, 12.5, -3},
			ColAHPremium: {145.2, 146, 147.25},
		},
	}
	return &Result{
		Frame: frame,
		Components: Components{
			Volatility:    []float64{50, 50, 25},
			FlowZ:         []float64{nan, 1.5, -0.25},
			Streak:        []int{0, 1, -1},
			Flow:          []float64{nan, 38, 22.4},
			Valuation:     []float64{nan, 60, 70},
			Momentum:      []float64{nan, nan, 0.01},
			MomentumScore: []float64{25, 25, 40},
			MAScore:       []float64{0, 0, 50},
			Trend:         []float64{25, 25, 90},
			Composite:     []float64{nan, 45.6, 63.72},
		},
	}
}

func TestResultRecords(t *testing.T) {
	records := smallResult().Records()
	require.Len(t, records, 3)

	assert.Equal(t, []string{"2020-01-01", "16788.55", "23.1", "", "145.2", ""}, records[0])
	assert.Equal(t, []string{"2020-01-03", "16190.02", "25.5", "-3", "147.25", "63.72"}, records[2])
	for _, r := range records {
		assert.Len(t, r, len(ResultHeaders))
	}
}

func TestResultComponentRecords(t *testing.T) {
	records := smallResult().ComponentRecords()
	require.Len(t, records, 3)

	assert.Equal(t, []string{"2020-01-02", "50", "1.5", "1", "38", "60", "", "25", "0", "25", "45.6"}, records[1])
	for _, r := range records {
		assert.Len(t, r, len(ComponentHeaders))
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(math.NaN()))
	assert.Equal(t, "", FormatValue(math.Inf(1)))
	assert.Equal(t, "0", FormatValue(0))
	assert.Equal(t, "1234.5", FormatValue(1234.5))
}

func TestResultLatest(t *testing.T) {
	result := smallResult()

	latest, ok := result.Latest()
	require.True(t, ok)
	assert.Equal(t, day(2), latest.Date)
	assert.Equal(t, 63.72, latest.FearGreed)
	assert.Equal(t, BandGreed, latest.Band)
	assert.Equal(t, -3.0, latest.NetBuy)

	text := latest.String()
	assert.Contains(t, text, "2020-01-03")
	assert.Contains(t, text, "63.7 (greed)")

	result.Components.Composite = []float64{math.NaN(), math.NaN(), math.NaN()}
	_, ok = result.Latest()
	assert.False(t, ok)
}

func TestSummaryStringMissingReading(t *testing.T) {
	s := Summary{Date: day(0), FearGreed: 10, Band: BandExtremeFear, NetBuy: math.NaN()}
	assert.Contains(t, s.String(), "n/a")
}
