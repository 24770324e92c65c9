package marketdata

import (
	"context"
	"time"
)

// Series names used in logs, metrics and errors.
const (
	SeriesHSI        = "hsi"
	SeriesVHSI       = "vhsi"
	SeriesSouthbound = "south_money"
	SeriesAHPremium  = "ah_premium"
	SeriesValuation  = "hsi_valuation"
)

// CSV headers written by the acquisition stage.
var (
	IndexHeaders      = []string{"date", "open", "high", "low", "latest"}
	SouthboundHeaders = []string{"date", "net_buy_amount", "buy_amount", "sell_amount", "cumulative_net_buy", "holding_market_value"}
	ValuationHeaders  = []string{"date", "pe", "pb", "dividend_yield"}
)

// Bar is one daily bar of an index. Latest is the closing level.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Latest float64
}

// SouthboundDay is one day of southbound Stock Connect flow. Fields the
// provider leaves empty are NaN.
type SouthboundDay struct {
	Date               time.Time
	NetBuyAmount       float64
	BuyAmount          float64
	SellAmount         float64
	CumulativeNetBuy   float64
	HoldingMarketValue float64
}

// ValuationDay is one day of index valuation ratios
type ValuationDay struct {
	Date          time.Time
	PE            float64
	PB            float64
	DividendYield float64
}

// Provider is the remote source of every acquired series. Results are
// sorted by date, oldest first.
type Provider interface {
	IndexDaily(ctx context.Context, series, secID string) ([]Bar, error)
	SouthboundHistory(ctx context.Context) ([]SouthboundDay, error)
	Valuation(ctx context.Context) ([]ValuationDay, error)
}
