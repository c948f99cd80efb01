package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"retailflow/internal/table"
)

// CSVWriter writes tables and raw records as CSV files
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers []string
	Records [][]string
}

// WriteTable writes t with its header to filePath, replacing any existing file
func (w *CSVWriter) WriteTable(filePath string, t *table.Table) error {
	records := make([][]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = v.Text()
		}
		records[i] = rec
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers: t.Columns(),
		Records: records,
	})
}

// WriteCSV writes the header and records to filePath, replacing any existing file
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			file.Close()
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			file.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return file.Close()
}
