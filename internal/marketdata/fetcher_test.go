package marketdata

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hkpulse/internal/config"
	apperrors "hkpulse/internal/errors"
	"hkpulse/internal/exporter"
)

type fakeProvider struct {
	failing map[string]bool
	secIDs  []string
}

func (p *fakeProvider) IndexDaily(_ context.Context, series, secID string) ([]Bar, error) {
	p.secIDs = append(p.secIDs, secID)
	if p.failing[series] {
		return nil, apperrors.NewNetworkError(apperrors.StageAcquisition, series, "unreachable", nil)
	}
	return []Bar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 0.5, Latest: 1.5},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 1.5, High: 2.5, Low: 1, Latest: 2},
	}, nil
}

func (p *fakeProvider) SouthboundHistory(context.Context) ([]SouthboundDay, error) {
	if p.failing[SeriesSouthbound] {
		return nil, errors.New("boom")
	}
	return []SouthboundDay{{
		Date:               time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		NetBuyAmount:       12.5,
		BuyAmount:          100,
		SellAmount:         87.5,
		CumulativeNetBuy:   3000,
		HoldingMarketValue: math.NaN(),
	}}, nil
}

func (p *fakeProvider) Valuation(context.Context) ([]ValuationDay, error) {
	if p.failing[SeriesValuation] {
		return nil, errors.New("boom")
	}
	return nil, nil
}

func newTestFetcher(t *testing.T, p Provider, opts ...FetcherOption) (*Fetcher, *config.Paths) {
	t.Helper()
	dir := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{
		DataDir:   filepath.Join(dir, "data"),
		OutputDir: filepath.Join(dir, "output"),
		LogsDir:   filepath.Join(dir, "logs"),
	}, "")
	jobs := DefaultJobs(p, config.Default().Provider, paths)
	// Sequential so the fake provider needs no locking
	opts = append([]FetcherOption{WithConcurrency(1)}, opts...)
	return NewFetcher(jobs, exporter.NewCSVWriter(nil, testLogger()), testLogger(), opts...), paths
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestFetcher_FetchAll(t *testing.T) {
	provider := &fakeProvider{}
	var progress bytes.Buffer
	fetcher, paths := newTestFetcher(t, provider, WithProgress(&progress))

	report, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 5)

	// Valuation returns no rows and is reported as a failure
	assert.Equal(t, 4, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, SeriesValuation, failed[0].Series)
	assert.True(t, apperrors.IsType(failed[0].Err, apperrors.ErrTypeValidation))

	assert.ElementsMatch(t, []string{"100.HSI", "124.VHSI", "124.HSAHP"}, provider.secIDs)

	hsi := readFile(t, paths.HSIFile)
	assert.True(t, strings.HasPrefix(hsi, "\ufeffdate,open,high,low,latest\n"))
	assert.Contains(t, hsi, "2024-01-02,1,2,0.5,1.5\n")

	south := readFile(t, paths.SouthboundFile)
	assert.Contains(t, south, "date,net_buy_amount,buy_amount,sell_amount,cumulative_net_buy,holding_market_value\n")
	assert.Contains(t, south, "2024-01-02,12.5,100,87.5,3000,\n")

	assert.NoFileExists(t, paths.ValuationFile)
	assert.NotEmpty(t, progress.String())
}

func TestFetcher_BacksUpPreviousFile(t *testing.T) {
	now := time.Date(2024, 6, 3, 9, 5, 0, 0, time.Local)
	fetcher, paths := newTestFetcher(t, &fakeProvider{}, WithClock(func() time.Time { return now }))

	_, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)
	report, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)

	var hsi SeriesResult
	for _, res := range report.Results {
		if res.Series == SeriesHSI {
			hsi = res
		}
	}
	assert.Equal(t, filepath.Join(paths.DataDir, "hsi_daily_20240603_0905.csv"), hsi.Backup)
	assert.FileExists(t, hsi.Backup)
	assert.Equal(t, 2, hsi.Rows)
	assert.Equal(t, 1, hsi.Backups)
}

func TestFetcher_AllSeriesFail(t *testing.T) {
	provider := &fakeProvider{failing: map[string]bool{
		SeriesHSI:        true,
		SeriesVHSI:       true,
		SeriesSouthbound: true,
		SeriesAHPremium:  true,
		SeriesValuation:  true,
	}}
	fetcher, _ := newTestFetcher(t, provider)

	report, err := fetcher.FetchAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.StageAcquisition, apperrors.StageOf(err))
	assert.Len(t, report.Failed(), 5)
}

func TestFetcher_PartialFailureContinues(t *testing.T) {
	provider := &fakeProvider{failing: map[string]bool{SeriesVHSI: true}}
	fetcher, paths := newTestFetcher(t, provider)

	report, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Succeeded())
	assert.NoFileExists(t, paths.VHSIFile)
	assert.FileExists(t, paths.AHPremiumFile)
}

func TestTables(t *testing.T) {
	table := ValuationTable([]ValuationDay{{
		Date:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		PE:            9.1,
		PB:            math.NaN(),
		DividendYield: 4.2,
	}})
	assert.Equal(t, ValuationHeaders, table.Headers)
	assert.Equal(t, [][]string{{"2024-01-02", "9.1", "", "4.2"}}, table.Records)
}
