// Package exporter writes the pipeline's tabular output.
//
// CSVWriter writes UTF-8 CSV files with a byte-order mark so spreadsheet
// tools detect the encoding. WriteWithBackup applies the acquisition
// stage's backup-on-overwrite policy before writing. WriteWorkbook saves
// the scoring result and its component breakdown as one xlsx file.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(files.NewManager(logger), logger)
//	backup, err := writer.WriteWithBackup("data/hsi_daily.csv", headers, records, time.Now())
package exporter
