package services

import (
	"context"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"hkpulse/internal/config"
	"hkpulse/internal/marketdata"
)

// MockProvider is a mock for the marketdata.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) IndexDaily(ctx context.Context, series, secID string) ([]marketdata.Bar, error) {
	args := m.Called(ctx, series, secID)
	bars, _ := args.Get(0).([]marketdata.Bar)
	return bars, args.Error(1)
}

func (m *MockProvider) SouthboundHistory(ctx context.Context) ([]marketdata.SouthboundDay, error) {
	args := m.Called(ctx)
	days, _ := args.Get(0).([]marketdata.SouthboundDay)
	return days, args.Error(1)
}

func (m *MockProvider) Valuation(ctx context.Context) ([]marketdata.ValuationDay, error) {
	args := m.Called(ctx)
	days, _ := args.Get(0).([]marketdata.ValuationDay)
	return days, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns the default configuration rooted in a temp directory
func testConfig(t *testing.T) (*config.Config, *config.Paths) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.PathsConfig{
		DataDir:   filepath.Join(dir, "data"),
		OutputDir: filepath.Join(dir, "output"),
		LogsDir:   filepath.Join(dir, "logs"),
	}
	return cfg, cfg.ResolvePaths()
}

var historyStart = time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)

// syntheticBars builds n daily bars around level with a slow cycle
func syntheticBars(n int, level, amplitude float64) []marketdata.Bar {
	bars := make([]marketdata.Bar, n)
	for i := range bars {
		v := level + amplitude*math.Sin(float64(i)/37) + float64(i%7)
		bars[i] = marketdata.Bar{
			Date:   historyStart.AddDate(0, 0, i),
			Open:   v - 1,
			High:   v + 2,
			Low:    v - 2,
			Latest: v,
		}
	}
	return bars
}

func syntheticSouthbound(n int) []marketdata.SouthboundDay {
	days := make([]marketdata.SouthboundDay, n)
	cumulative := 0.0
	for i := range days {
		net := 20*math.Sin(float64(i)/11) + float64(i%5) - 2
		cumulative += net
		days[i] = marketdata.SouthboundDay{
			Date:               historyStart.AddDate(0, 0, i),
			NetBuyAmount:       net,
			BuyAmount:          100 + net,
			SellAmount:         100,
			CumulativeNetBuy:   cumulative,
			HoldingMarketValue: math.NaN(),
		}
	}
	return days
}

// mockHistory primes a provider with n days of every series
func mockHistory(n int) *MockProvider {
	p := &MockProvider{}
	p.On("IndexDaily", mock.Anything, marketdata.SeriesHSI, "100.HSI").Return(syntheticBars(n, 25000, 3000), nil)
	p.On("IndexDaily", mock.Anything, marketdata.SeriesVHSI, "124.VHSI").Return(syntheticBars(n, 22, 6), nil)
	p.On("IndexDaily", mock.Anything, marketdata.SeriesAHPremium, "124.HSAHP").Return(syntheticBars(n, 130, 10), nil)
	p.On("SouthboundHistory", mock.Anything).Return(syntheticSouthbound(n), nil)
	p.On("Valuation", mock.Anything).Return([]marketdata.ValuationDay{
		{Date: historyStart, PE: 9.5, PB: 1.1, DividendYield: 3.8},
	}, nil)
	return p
}
