package table

import (
	"fmt"
	"slices"
)

// Table is an ordered set of rows sharing one column schema.
// Cells may disagree with their column's nominal type.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New returns an empty table with the given columns
func New(columns ...string) *Table {
	t := &Table{
		columns: slices.Clone(columns),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[c] = i
	}
	return t
}

// Columns returns the column names in schema order
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether name is part of the schema
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the row count
func (t *Table) Len() int {
	return len(t.rows)
}

// AppendRow adds a row; values must match the schema width
func (t *Table) AppendRow(values ...Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	t.rows = append(t.rows, slices.Clone(values))
	return nil
}

// AppendRecord adds a row from a column-keyed record; absent columns are null
func (t *Table) AppendRecord(record map[string]Value) {
	row := make([]Value, len(t.columns))
	for name, v := range record {
		if i, ok := t.index[name]; ok {
			row[i] = v
		}
	}
	t.rows = append(t.rows, row)
}

// Row returns a copy of row i
func (t *Table) Row(i int) []Value {
	return slices.Clone(t.rows[i])
}

// Record returns row i keyed by column name
func (t *Table) Record(i int) map[string]Value {
	rec := make(map[string]Value, len(t.columns))
	for c, idx := range t.index {
		rec[c] = t.rows[i][idx]
	}
	return rec
}

// Cell returns the value at row i in column name, or null for unknown columns
func (t *Table) Cell(i int, name string) Value {
	idx, ok := t.index[name]
	if !ok {
		return Null()
	}
	return t.rows[i][idx]
}

// SetCell overwrites the value at row i in column name.
// Unknown columns are ignored.
func (t *Table) SetCell(i int, name string, v Value) {
	if idx, ok := t.index[name]; ok {
		t.rows[i][idx] = v
	}
}

// Column returns a copy of every cell in column name
func (t *Table) Column(name string) []Value {
	idx, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out
}

// AddColumn appends a column filled with fill; existing columns are left untouched
func (t *Table) AddColumn(name string, fill Value) {
	if t.HasColumn(name) {
		return
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], fill)
	}
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	c := New(t.columns...)
	c.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		c.rows[i] = slices.Clone(row)
	}
	return c
}

// Filter returns a new table holding the rows for which keep returns true
func (t *Table) Filter(keep func(i int) bool) *Table {
	c := New(t.columns...)
	for i, row := range t.rows {
		if keep(i) {
			c.rows = append(c.rows, slices.Clone(row))
		}
	}
	return c
}

// NullCount returns the number of null cells in column name
func (t *Table) NullCount(name string) int {
	count := 0
	for _, v := range t.Column(name) {
		if v.IsNull() {
			count++
		}
	}
	return count
}

// ColumnKind infers the column's type from its non-null cells.
// Ints mixed with floats are float; a column with no values is float;
// any other mix is string.
func (t *Table) ColumnKind(name string) Kind {
	seen := map[Kind]bool{}
	for _, v := range t.Column(name) {
		if !v.IsNull() {
			seen[v.Kind()] = true
		}
	}

	switch {
	case len(seen) == 0:
		return KindFloat
	case len(seen) == 1:
		for k := range seen {
			return k
		}
	case len(seen) == 2 && seen[KindInt] && seen[KindFloat]:
		return KindFloat
	}
	return KindString
}

// Equal reports whether two tables hold the same schema and cells in the same order
func (t *Table) Equal(o *Table) bool {
	if !slices.Equal(t.columns, o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i := range t.rows {
		for j := range t.rows[i] {
			if !t.rows[i][j].Equal(o.rows[i][j]) {
				return false
			}
		}
	}
	return true
}
