// Package operations runs the pipeline stages in order.
//
// A Runner executes Steps sequentially under one trace ID. Each step gets
// a span and a stage metric, and its result is stored on the
// OperationState for the caller. The first failing step stops the run and
// the remaining steps are marked skipped.
//
// Basic usage:
//
//	runner := operations.NewRunner(tel, logger,
//		operations.NewAcquisitionStep(acquisition),
//		operations.NewScoringStep(scoring),
//		operations.NewChartStep(chart),
//	)
//	state, err := runner.Run(ctx)
package operations
