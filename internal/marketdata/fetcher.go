package marketdata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"hkpulse/internal/config"
	apperrors "hkpulse/internal/errors"
	"hkpulse/internal/exporter"
	"hkpulse/internal/files"
	"hkpulse/internal/infrastructure"
)

// Table is the CSV form of one fetched series
type Table struct {
	Headers []string
	Records [][]string
}

// Job fetches one series and names the file it is written to
type Job struct {
	Series string
	Path   string
	Fetch  func(ctx context.Context) (Table, error)
}

// SeriesResult is the outcome of one job
type SeriesResult struct {
	Series  string
	Path    string
	Rows    int
	Backup  string
	// Backups is the number of timestamped backups kept next to Path
	Backups int
	Err     error
}

// FetchReport collects the per-series outcomes of a FetchAll run, in job
// order.
type FetchReport struct {
	Results  []SeriesResult
	Duration time.Duration
}

// Succeeded returns the number of series written
func (r *FetchReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results that carry an error
func (r *FetchReport) Failed() []SeriesResult {
	var failed []SeriesResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Fetcher runs the acquisition jobs concurrently and persists each
// result with a timestamped backup of the previous file.
type Fetcher struct {
	jobs        []Job
	writer      *exporter.CSVWriter
	metrics     *infrastructure.PipelineMetrics
	logger      *slog.Logger
	progress    io.Writer
	concurrency int
	now         func() time.Time
}

// FetcherOption customizes a Fetcher
type FetcherOption func(*Fetcher)

// WithProgress draws a progress bar on w
func WithProgress(w io.Writer) FetcherOption {
	return func(f *Fetcher) { f.progress = w }
}

// WithMetrics records per-series outcomes
func WithMetrics(m *infrastructure.PipelineMetrics) FetcherOption {
	return func(f *Fetcher) { f.metrics = m }
}

// WithClock overrides the time used for backup names
func WithClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) { f.now = now }
}

// WithConcurrency bounds the number of jobs in flight
func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) { f.concurrency = n }
}

// NewFetcher creates a fetcher for the given jobs
func NewFetcher(jobs []Job, writer *exporter.CSVWriter, logger *slog.Logger, opts ...FetcherOption) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fetcher{
		jobs:        jobs,
		writer:      writer,
		logger:      logger.With(slog.String("component", "fetcher")),
		concurrency: len(jobs),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.writer == nil {
		f.writer = exporter.NewCSVWriter(nil, logger)
	}
	return f
}

// DefaultJobs wires the five acquired series to their provider calls and
// output files.
func DefaultJobs(p Provider, cfg config.ProviderConfig, paths *config.Paths) []Job {
	index := func(series, secID string) func(context.Context) (Table, error) {
		return func(ctx context.Context) (Table, error) {
			bars, err := p.IndexDaily(ctx, series, secID)
			if err != nil {
				return Table{}, err
			}
			return BarsTable(bars), nil
		}
	}

	return []Job{
		{Series: SeriesHSI, Path: paths.HSIFile, Fetch: index(SeriesHSI, cfg.HSISecID)},
		{Series: SeriesVHSI, Path: paths.VHSIFile, Fetch: index(SeriesVHSI, cfg.VHSISecID)},
		{Series: SeriesSouthbound, Path: paths.SouthboundFile, Fetch: func(ctx context.Context) (Table, error) {
			days, err := p.SouthboundHistory(ctx)
			if err != nil {
				return Table{}, err
			}
			return SouthboundTable(days), nil
		}},
		{Series: SeriesAHPremium, Path: paths.AHPremiumFile, Fetch: index(SeriesAHPremium, cfg.AHPremiumSecID)},
		{Series: SeriesValuation, Path: paths.ValuationFile, Fetch: func(ctx context.Context) (Table, error) {
			days, err := p.Valuation(ctx)
			if err != nil {
				return Table{}, err
			}
			return ValuationTable(days), nil
		}},
	}
}

// FetchAll runs every job and waits for all of them. A failing series is
// logged and recorded in the report while the others proceed; an error is
// returned only when no series could be written.
func (f *Fetcher) FetchAll(ctx context.Context) (*FetchReport, error) {
	start := time.Now()
	report := &FetchReport{Results: make([]SeriesResult, len(f.jobs))}

	bar := f.progressBar()
	var barMu sync.Mutex

	var g errgroup.Group
	if f.concurrency > 0 {
		g.SetLimit(f.concurrency)
	}
	for i, job := range f.jobs {
		g.Go(func() error {
			report.Results[i] = f.run(ctx, job)

			barMu.Lock()
			bar.Describe(job.Series)
			_ = bar.Add(1)
			barMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	report.Duration = time.Since(start)
	f.logger.Info("Acquisition finished",
		slog.Int("succeeded", report.Succeeded()),
		slog.Int("failed", len(report.Failed())),
		slog.Duration("duration", report.Duration))

	if len(f.jobs) > 0 && report.Succeeded() == 0 {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("acquisition cancelled: %w", err)
		}
		return report, apperrors.NewAppError(apperrors.ErrTypeNetwork, apperrors.StageAcquisition,
			fmt.Sprintf("all %d series failed", len(f.jobs)), report.Results[0].Err)
	}
	return report, nil
}

func (f *Fetcher) run(ctx context.Context, job Job) SeriesResult {
	result := SeriesResult{Series: job.Series, Path: job.Path}
	logger := f.logger.With(slog.String("series", job.Series))

	table, err := job.Fetch(ctx)
	if err == nil && len(table.Records) == 0 {
		err = apperrors.NewValidationError(apperrors.StageAcquisition, job.Series, "provider returned no rows")
	}
	if err == nil {
		result.Backup, err = f.writer.WriteWithBackup(job.Path, table.Headers, table.Records, f.now())
		if err != nil {
			err = apperrors.NewStorageError(apperrors.StageAcquisition, "write "+job.Path, err).WithSeries(job.Series)
		}
	}

	f.metrics.RecordFetch(ctx, job.Series, len(table.Records), err)
	if err != nil {
		result.Err = err
		attrs := []any{slog.String("error", err.Error())}
		if backups, ferr := files.FindBackups(job.Path); ferr == nil {
			if latest, ok := files.GetLatestFile(backups); ok {
				attrs = append(attrs, slog.String("latest_backup", latest.Path))
			}
		}
		logger.Error("Failed to fetch series", attrs...)
		return result
	}

	result.Rows = len(table.Records)
	if backups, ferr := files.FindBackups(job.Path); ferr == nil {
		result.Backups = len(backups)
	}
	logger.Info("Saved series",
		slog.String("file_path", job.Path),
		slog.Int("rows", result.Rows),
		slog.String("backup", result.Backup),
		slog.Int("backups", result.Backups))
	return result
}

func (f *Fetcher) progressBar() *progressbar.ProgressBar {
	w := f.progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(len(f.jobs),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(f.progress != nil),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// BarsTable renders index bars as date,open,high,low,latest rows
func BarsTable(bars []Bar) Table {
	records := make([][]string, len(bars))
	for i, b := range bars {
		records[i] = []string{
			b.Date.Format(config.DateLayout),
			exporter.FormatFloat(b.Open),
			exporter.FormatFloat(b.High),
			exporter.FormatFloat(b.Low),
			exporter.FormatFloat(b.Latest),
		}
	}
	return Table{Headers: IndexHeaders, Records: records}
}

// SouthboundTable renders the flow history in the southbound CSV schema
func SouthboundTable(days []SouthboundDay) Table {
	records := make([][]string, len(days))
	for i, d := range days {
		records[i] = []string{
			d.Date.Format(config.DateLayout),
			exporter.FormatFloat(d.NetBuyAmount),
			exporter.FormatFloat(d.BuyAmount),
			exporter.FormatFloat(d.SellAmount),
			exporter.FormatFloat(d.CumulativeNetBuy),
			exporter.FormatFloat(d.HoldingMarketValue),
		}
	}
	return Table{Headers: SouthboundHeaders, Records: records}
}

// ValuationTable renders valuation ratios as date,pe,pb,dividend_yield rows
func ValuationTable(days []ValuationDay) Table {
	records := make([][]string, len(days))
	for i, d := range days {
		records[i] = []string{
			d.Date.Format(config.DateLayout),
			exporter.FormatFloat(d.PE),
			exporter.FormatFloat(d.PB),
			exporter.FormatFloat(d.DividendYield),
		}
	}
	return Table{Headers: ValuationHeaders, Records: records}
}
