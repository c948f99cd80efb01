package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMissingFile is returned when a table's source file does not exist
var ErrMissingFile = errors.New("input file not found")

const utf8BOM = "\uFEFF"

// LoadFile reads a table from a .csv or .xlsx file
func LoadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	default:
		return LoadCSV(path)
	}
}

// LoadCSV reads a comma separated file whose first record is the header
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses CSV data from r
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no header")
	}
	return fromRecords(records), nil
}

// LoadXLSX reads the first sheet of a workbook whose first row is the header
func LoadXLSX(path string) (*Table, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s has no header", sheets[0])
	}
	return fromRecords(rows), nil
}

func fromRecords(records [][]string) *Table {
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := New(header...)
	for _, rec := range records[1:] {
		row := make([]Value, len(header))
		for j := range header {
			if j < len(rec) {
				row[j] = ParseCell(rec[j])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}
