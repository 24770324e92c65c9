package sentiment

import (
	"math"
	"strconv"
)

// DateLayout is the date format of every table the engine writes.
const DateLayout = "2006-01-02"

// ResultHeaders are the columns of the index table, in order.
var ResultHeaders = []string{ColDate, ColHSI, ColVHSI, ColNetBuy, ColAHPremium, ColFearGreed}

// ComponentHeaders are the columns of the component breakdown table.
var ComponentHeaders = []string{
	ColDate,
	"vhsi_score",
	"south_z",
	"south_streak",
	"south_score",
	"ah_pct",
	"momentum",
	"momentum_score",
	"ma_score",
	"trend_score",
	ColFearGreed,
}

// FormatValue renders a float for CSV output; NaN becomes an empty cell.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Records returns the index table rows without the header
func (r *Result) Records() [][]string {
	obs := r.Observations()
	records := make([][]string, len(obs))
	for i, o := range obs {
		records[i] = []string{
			o.Date.Format(DateLayout),
			FormatValue(o.HSI),
			FormatValue(o.VHSI),
			FormatValue(o.NetBuy),
			FormatValue(o.AHPremium),
			FormatValue(o.FearGreed),
		}
	}
	return records
}

// ComponentRecords returns the component breakdown rows without the header
func (r *Result) ComponentRecords() [][]string {
	c := r.Components
	records := make([][]string, r.Len())
	for i := range records {
		records[i] = []string{
			r.Frame.Dates[i].Format(DateLayout),
			FormatValue(c.Volatility[i]),
			FormatValue(c.FlowZ[i]),
			strconv.Itoa(c.Streak[i]),
			FormatValue(c.Flow[i]),
			FormatValue(c.Valuation[i]),
			FormatValue(c.Momentum[i]),
			FormatValue(c.MomentumScore[i]),
			FormatValue(c.MAScore[i]),
			FormatValue(c.Trend[i]),
			FormatValue(c.Composite[i]),
		}
	}
	return records
}
