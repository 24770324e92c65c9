// Package services composes the pipeline stages from their building
// blocks.
//
// AcquisitionService fetches the raw series through a marketdata.Provider
// into the data directory. ScoringService loads those files, runs the
// sentiment engine and writes the index table, the component breakdown
// and the xlsx workbook. ChartService renders the index table from the
// configured start date.
//
// Each service takes its dependencies in the constructor and reports
// failures as AppErrors tagged with the stage and, where known, the
// series.
package services
