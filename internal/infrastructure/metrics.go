package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded by a pipeline run
type PipelineMetrics struct {
	StageDuration   metric.Float64Histogram
	StageRuns       metric.Int64Counter
	RowsFetched     metric.Int64Counter
	FetchFailures   metric.Int64Counter
	RowsScored      metric.Int64Counter
	LatestComposite metric.Float64Gauge

	// Go runtime snapshot, recorded once at the end of a run
	Goroutines metric.Int64Gauge
	HeapBytes  metric.Int64Gauge
}

// NewPipelineMetrics creates every pipeline instrument on the meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	stageDuration, err := meter.Float64Histogram(
		"pulse_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageRuns, err := meter.Int64Counter(
		"pulse_stage_runs_total",
		metric.WithDescription("Total number of pipeline stage executions"),
	)
	if err != nil {
		return nil, err
	}

	rowsFetched, err := meter.Int64Counter(
		"pulse_rows_fetched_total",
		metric.WithDescription("Rows fetched from the market data provider"),
	)
	if err != nil {
		return nil, err
	}

	fetchFailures, err := meter.Int64Counter(
		"pulse_fetch_failures_total",
		metric.WithDescription("Series that failed to fetch"),
	)
	if err != nil {
		return nil, err
	}

	rowsScored, err := meter.Int64Counter(
		"pulse_rows_scored_total",
		metric.WithDescription("Dated rows written by the scoring engine"),
	)
	if err != nil {
		return nil, err
	}

	latest, err := meter.Float64Gauge(
		"pulse_fear_greed_latest",
		metric.WithDescription("Most recent defined fear & greed composite"),
	)
	if err != nil {
		return nil, err
	}

	goroutines, err := meter.Int64Gauge(
		"pulse_goroutines",
		metric.WithDescription("Number of goroutines at the end of the run"),
	)
	if err != nil {
		return nil, err
	}

	heap, err := meter.Int64Gauge(
		"pulse_heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		StageDuration:   stageDuration,
		StageRuns:       stageRuns,
		RowsFetched:     rowsFetched,
		FetchFailures:   fetchFailures,
		RowsScored:      rowsScored,
		LatestComposite: latest,
		Goroutines:      goroutines,
		HeapBytes:       heap,
	}, nil
}

// RecordStage records one stage execution
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	)
	m.StageRuns.Add(ctx, 1, attrs)
	m.StageDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordFetch records the outcome of fetching one series
func (m *PipelineMetrics) RecordFetch(ctx context.Context, series string, rows int, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("series", series))
	if err != nil {
		m.FetchFailures.Add(ctx, 1, attrs)
		return
	}
	m.RowsFetched.Add(ctx, int64(rows), attrs)
}

// RecordScore records a scoring run's row count and latest composite
func (m *PipelineMetrics) RecordScore(ctx context.Context, rows int, latest float64, hasLatest bool) {
	if m == nil {
		return
	}
	m.RowsScored.Add(ctx, int64(rows))
	if hasLatest {
		m.LatestComposite.Record(ctx, latest)
	}
}

// RecordRuntime snapshots goroutine count and heap size
func (m *PipelineMetrics) RecordRuntime(ctx context.Context) {
	if m == nil {
		return
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.Goroutines.Record(ctx, int64(runtime.NumGoroutine()))
	m.HeapBytes.Record(ctx, int64(mem.HeapAlloc))
}
