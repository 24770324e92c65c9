package sentiment

import (
	"fmt"
	"strings"
	"time"
)

// Summary is the latest reading of the index.
type Summary struct {
	Date      time.Time `json:"date"`
	FearGreed float64   `json:"fear_greed"`
	Band      string    `json:"band"`
	AHPremium float64   `json:"ah_premium"`
	NetBuy    float64   `json:"net_buy"`
	VHSI      float64   `json:"vhsi"`
	HSI       float64   `json:"hsi"`
}

// Latest returns the summary of the most recent date with a defined
// composite. ok is false when no date has one.
func (r *Result) Latest() (Summary, bool) {
	obs := r.Observations()
	for i := len(obs) - 1; i >= 0; i-- {
		o := obs[i]
		if IsMissing(o.FearGreed) {
			continue
		}
		return Summary{
			Date:      o.Date,
			FearGreed: o.FearGreed,
			Band:      Band(o.FearGreed),
			AHPremium: o.AHPremium,
			NetBuy:    o.NetBuy,
			VHSI:      o.VHSI,
			HSI:       o.HSI,
		}, true
	}
	return Summary{}, false
}

// String renders the summary as a short multi-line report
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hong Kong fear & greed index (%s)\n", s.Date.Format(DateLayout))
	fmt.Fprintf(&b, "  composite:   %.1f (%s)\n", s.FearGreed, s.Band)
	fmt.Fprintf(&b, "  AH premium:  %s\n", formatReading(s.AHPremium, 2))
	fmt.Fprintf(&b, "  net buy:     %s\n", formatReading(s.NetBuy, 2))
	fmt.Fprintf(&b, "  VHSI:        %s\n", formatReading(s.VHSI, 2))
	fmt.Fprintf(&b, "  HSI:         %s\n", formatReading(s.HSI, 2))
	return b.String()
}

func formatReading(v float64, prec int) string {
	if IsMissing(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, v)
}
