// Package exporter writes pipeline outputs to disk.
//
// CSVWriter renders a table.Table as CSV with its header row; null cells are
// written empty, dates as YYYY-MM-DD and integral floats keep a trailing ".0"
// so the file reloads with the same column types. WriteJSON and WriteText
// write the metadata record and the human readable reports.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteTable(paths.GetStagingPath(config.StagedStoresFile), stores)
package exporter
