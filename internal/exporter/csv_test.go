package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailflow/internal/table"
)

func TestWriteTableRoundTrip(t *testing.T) {
	src := table.New("id", "ville", "ca", "date", "ouvert")
	require.NoError(t, src.AppendRow(table.String("MAG_001"), table.String("Paris"), table.Float(1500000),
		table.Date(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)), table.Bool(true)))
	require.NoError(t, src.AppendRow(table.String("MAG_002"), table.Null(), table.Float(2.5),
		table.Null(), table.Bool(false)))

	path := filepath.Join(t.TempDir(), "staging", "magasins.csv")
	require.NoError(t, NewCSVWriter(nil).WriteTable(path, src))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,ville,ca,date,ouvert", lines[0])
	assert.Equal(t, "MAG_001,Paris,1500000.0,2021-03-04,True", lines[1])
	assert.Equal(t, "MAG_002,,2.5,,False", lines[2])

	loaded, err := table.LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, table.KindFloat, loaded.ColumnKind("ca"))
	assert.True(t, loaded.Cell(1, "ville").IsNull())
}

func TestWriteCSVReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}, {"5", "6"}},
	}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"3", "4"}},
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"3", "4"}}, records)
}

func TestWriteJSONAndText(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "nested", "metadata.json")
	require.NoError(t, WriteJSON(jsonPath, map[string]any{"pipeline_version": "1.0.0"}))

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pipeline_version": "1.0.0"`)

	textPath := filepath.Join(dir, "report.txt")
	require.NoError(t, WriteText(textPath, "DATA VALIDATION REPORT\n"))
	raw, err = os.ReadFile(textPath)
	require.NoError(t, err)
	assert.Equal(t, "DATA VALIDATION REPORT\n", string(raw))
}
