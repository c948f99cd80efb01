package table

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		text string
	}{
		{raw: "", kind: KindNull, text: ""},
		{raw: "42", kind: KindInt, text: "42"},
		{raw: "-7", kind: KindInt, text: "-7"},
		{raw: "3.25", kind: KindFloat, text: "3.25"},
		{raw: "1e3", kind: KindFloat, text: "1000.0"},
		{raw: "True", kind: KindBool, text: "True"},
		{raw: "false", kind: KindBool, text: "False"},
		{raw: "NULL", kind: KindString, text: "NULL"},
		{raw: "nan", kind: KindString, text: "nan"},
		{raw: "Infinity", kind: KindString, text: "Infinity"},
		{raw: "48,8566", kind: KindString, text: "48,8566"},
		{raw: "  Paris  ", kind: KindString, text: "  Paris  "},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := ParseCell(tt.raw)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.text, v.Text())
		})
	}
}

func TestValueKeyAndCompare(t *testing.T) {
	assert.True(t, Int(3).Equal(Float(3)))
	assert.False(t, String("3").Equal(Int(3)))
	assert.True(t, Null().Equal(Null()))

	assert.Equal(t, -1, Int(2).Compare(Float(2.5)))
	assert.Equal(t, 1, String("b").Compare(String("a")))
	assert.Equal(t, -1, Null().Compare(String("a")))
	assert.Equal(t, 0, Date(time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)).Compare(Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))))
}

func TestValueAccessors(t *testing.T) {
	i, ok := Int(7).IntValue()
	assert.True(t, ok)
	assert.Equal(t, int64(7), i)
	_, ok = Float(7).IntValue()
	assert.False(t, ok)

	b, ok := Bool(true).BoolValue()
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = String("true").BoolValue()
	assert.False(t, ok)
}

func TestFloatNaNIsNull(t *testing.T) {
	nan := Float(0)
	assert.False(t, nan.IsNull())
	zero := 0.0
	assert.True(t, Float(zero/zero).IsNull())
}

func TestTableOperations(t *testing.T) {
	tbl := New("id", "montant")
	require.NoError(t, tbl.AppendRow(String("a"), Int(1)))
	require.NoError(t, tbl.AppendRow(String("b"), Float(2.5)))
	tbl.AppendRecord(map[string]Value{"id": String("c"), "unknown": Int(9)})
	assert.Error(t, tbl.AppendRow(String("d")))

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, KindFloat, tbl.ColumnKind("montant"))
	assert.Equal(t, 1, tbl.NullCount("montant"))
	assert.True(t, tbl.Cell(0, "missing").IsNull())

	clone := tbl.Clone()
	clone.SetCell(0, "id", String("z"))
	assert.Equal(t, "a", tbl.Cell(0, "id").Text())
	assert.False(t, tbl.Equal(clone))

	filtered := tbl.Filter(func(i int) bool { return !tbl.Cell(i, "montant").IsNull() })
	assert.Equal(t, 2, filtered.Len())

	tbl.AddColumn("flag", Bool(false))
	assert.Equal(t, []string{"id", "montant", "flag"}, tbl.Columns())
	assert.Equal(t, "False", tbl.Cell(2, "flag").Text())
	assert.Equal(t, "c", tbl.Record(2)["id"].Text())
}

func TestColumnKindInference(t *testing.T) {
	tests := []struct {
		name   string
		values []Value
		want   Kind
	}{
		{name: "all ints", values: []Value{Int(1), Int(2), Null()}, want: KindInt},
		{name: "int float mix", values: []Value{Int(1), Float(2.5)}, want: KindFloat},
		{name: "all null", values: []Value{Null(), Null()}, want: KindFloat},
		{name: "dates", values: []Value{Date(time.Now())}, want: KindDate},
		{name: "number and text", values: []Value{Int(1), String("x")}, want: KindString},
		{name: "bools", values: []Value{Bool(true), Bool(false)}, want: KindBool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := New("c")
			for _, v := range tt.values {
				require.NoError(t, tbl.AppendRow(v))
			}
			assert.Equal(t, tt.want, tbl.ColumnKind("c"))
		})
	}
}

func TestReadCSV(t *testing.T) {
	data := "\ufeffid_magasin,ville,latitude\nMAG_001,Paris,48.85\nMAG_002,,\"45,76\"\nMAG_003\n"
	tbl, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"id_magasin", "ville", "latitude"}, tbl.Columns())
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, KindFloat, tbl.Cell(0, "latitude").Kind())
	assert.True(t, tbl.Cell(1, "ville").IsNull())
	assert.Equal(t, "45,76", tbl.Cell(1, "latitude").Text())
	assert.True(t, tbl.Cell(2, "latitude").IsNull())
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "magasins_raw.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFile))

	_, err = LoadFile(filepath.Join(t.TempDir(), "magasins_raw.xlsx"))
	assert.True(t, errors.Is(err, ErrMissingFile))
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrents_raw.xlsx")

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]any{"id_site", "zone_chalandise_km", "enseigne_concurrent"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]any{"SITE_001", 5000, "carrefour"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]any{"SITE_002", 4.5}))
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, KindFloat, tbl.ColumnKind("zone_chalandise_km"))
	assert.Equal(t, "carrefour", tbl.Cell(0, "enseigne_concurrent").Text())
	assert.True(t, tbl.Cell(1, "enseigne_concurrent").IsNull())
}
