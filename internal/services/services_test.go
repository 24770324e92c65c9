package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hkpulse/internal/config"
	apperrors "hkpulse/internal/errors"
	"hkpulse/internal/exporter"
	"hkpulse/internal/marketdata"
	"hkpulse/internal/sentiment"
)

func TestSourceFilesMatchAcquisitionOutput(t *testing.T) {
	want := map[string]string{
		sentiment.ColHSI:       config.HSIFileName,
		sentiment.ColVHSI:      config.VHSIFileName,
		sentiment.ColNetBuy:    config.SouthboundFileName,
		sentiment.ColAHPremium: config.AHPremiumFileName,
	}
	require.Len(t, sentiment.Sources, len(want))
	for _, src := range sentiment.Sources {
		assert.Equal(t, want[src.Series], src.File, src.Series)
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	cfg, paths := testConfig(t)
	ctx := context.Background()
	provider := mockHistory(1300)

	acquisition := NewAcquisitionService(cfg, paths, provider, nil, nil, discardLogger())
	fetched, err := acquisition.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, fetched.Succeeded())
	provider.AssertExpectations(t)

	scoring := NewScoringService(paths, nil, discardLogger())
	scored, err := scoring.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1300, scored.Rows)
	assert.Greater(t, scored.Defined, 0)
	require.True(t, scored.HasLatest)
	assert.GreaterOrEqual(t, scored.Latest.FearGreed, 0.0)
	assert.LessOrEqual(t, scored.Latest.FearGreed, 100.0)
	assert.Equal(t, sentiment.Band(scored.Latest.FearGreed), scored.Latest.Band)

	for _, path := range []string{paths.IndexCSV, paths.ComponentsCSV, paths.Workbook} {
		assert.FileExists(t, path)
	}
	rows, err := exporter.ReadWorkbookSheet(paths.Workbook, SheetComponents)
	require.NoError(t, err)
	assert.Equal(t, sentiment.ComponentHeaders, rows[0])
	assert.Len(t, rows, 1301)

	chartSvc, err := NewChartService(cfg.Chart, paths, discardLogger())
	require.NoError(t, err)
	charted, err := chartSvc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1300, charted.Points)
	assert.Equal(t, historyStart, charted.From)
	assert.FileExists(t, paths.ChartFile)
}

func TestAcquisition_PartialFailure(t *testing.T) {
	cfg, paths := testConfig(t)
	provider := &MockProvider{}
	provider.On("IndexDaily", mock.Anything, marketdata.SeriesHSI, mock.Anything).Return(syntheticBars(10, 25000, 100), nil)
	provider.On("IndexDaily", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	provider.On("SouthboundHistory", mock.Anything).Return(nil, errors.New("timeout"))
	provider.On("Valuation", mock.Anything).Return(nil, errors.New("timeout"))

	report, err := NewAcquisitionService(cfg, paths, provider, nil, nil, discardLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded())
	assert.Len(t, report.Failed(), 4)
	assert.FileExists(t, paths.HSIFile)
}

func TestScoring_MissingInputWritesNothing(t *testing.T) {
	cfg, paths := testConfig(t)
	provider := mockHistory(50)
	_, err := NewAcquisitionService(cfg, paths, provider, nil, nil, discardLogger()).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.Remove(paths.VHSIFile))

	_, err = NewScoringService(paths, nil, discardLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.StageScoring, apperrors.StageOf(err))
	assert.Equal(t, sentiment.ColVHSI, apperrors.SeriesOf(err))
	assert.NoFileExists(t, paths.IndexCSV)
	assert.NoFileExists(t, paths.Workbook)
}

func TestChart_NoRowsAfterStart(t *testing.T) {
	cfg, paths := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.IndexCSV), 0755))
	require.NoError(t, os.WriteFile(paths.IndexCSV,
		[]byte("date,hsi,vhsi,net_buy,ah_premium,fear_greed\n2016-05-03,20000,20,1,120,50\n"), 0644))

	svc, err := NewChartService(cfg.Chart, paths, discardLogger())
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	assert.NoFileExists(t, paths.ChartFile)
}

func TestChart_InvalidStartDate(t *testing.T) {
	cfg, paths := testConfig(t)
	cfg.Chart.StartDate = "2017/13/01"
	_, err := NewChartService(cfg.Chart, paths, discardLogger())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestToCells(t *testing.T) {
	rows := toCells([][]string{{"2024-01-02", "1.5", "", "x"}})
	assert.Equal(t, []interface{}{"2024-01-02", 1.5, nil, "x"}, rows[0])
}
