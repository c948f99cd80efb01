package validation

import (
	"fmt"

	"retailflow/internal/table"
)

// ExpectationType names an expectation kind in reports and JSON dumps
type ExpectationType string

const (
	TypeRowCountBetween    ExpectationType = "expect_table_row_count_to_be_between"
	TypeColumnExists       ExpectationType = "expect_column_to_exist"
	TypeColumnUnique       ExpectationType = "expect_column_values_to_be_unique"
	TypeColumnNotNull      ExpectationType = "expect_column_values_to_not_be_null"
	TypeColumnValueBetween ExpectationType = "expect_column_values_to_be_between"
	TypeColumnOfType       ExpectationType = "expect_column_values_to_be_of_type"
)

// Expectation is a declarative assertion about one table. The set of
// implementations is closed; Evaluate handles every one of them.
type Expectation interface {
	Type() ExpectationType
	// Column is the target column, empty for table-level expectations
	Column() string
	// Params returns the expectation's arguments for reporting
	Params() map[string]any
	String() string
	expectation()
}

// RowCountBetween expects Min <= row count <= Max
type RowCountBetween struct {
	Min, Max int
}

// ColumnExists expects Target to be part of the schema
type ColumnExists struct {
	Target string
}

// ColumnUnique expects the non-missing values of Target to be distinct
type ColumnUnique struct {
	Target string
}

// ColumnNotNull expects Target to have no missing cells
type ColumnNotNull struct {
	Target string
}

// ColumnValuesBetween expects every non-missing value of Target in [Min, Max]
type ColumnValuesBetween struct {
	Target   string
	Min, Max float64
}

// ColumnOfType expects the inferred type of Target to be Kind
type ColumnOfType struct {
	Target string
	Kind   table.Kind
}

func (RowCountBetween) Type() ExpectationType     { return TypeRowCountBetween }
func (ColumnExists) Type() ExpectationType        { return TypeColumnExists }
func (ColumnUnique) Type() ExpectationType        { return TypeColumnUnique }
func (ColumnNotNull) Type() ExpectationType       { return TypeColumnNotNull }
func (ColumnValuesBetween) Type() ExpectationType { return TypeColumnValueBetween }
func (ColumnOfType) Type() ExpectationType        { return TypeColumnOfType }

func (RowCountBetween) Column() string       { return "" }
func (e ColumnExists) Column() string        { return e.Target }
func (e ColumnUnique) Column() string        { return e.Target }
func (e ColumnNotNull) Column() string       { return e.Target }
func (e ColumnValuesBetween) Column() string { return e.Target }
func (e ColumnOfType) Column() string        { return e.Target }

func (e RowCountBetween) Params() map[string]any {
	return map[string]any{"min_value": e.Min, "max_value": e.Max}
}

func (e ColumnExists) Params() map[string]any  { return map[string]any{"column": e.Target} }
func (e ColumnUnique) Params() map[string]any  { return map[string]any{"column": e.Target} }
func (e ColumnNotNull) Params() map[string]any { return map[string]any{"column": e.Target} }

func (e ColumnValuesBetween) Params() map[string]any {
	return map[string]any{"column": e.Target, "min_value": e.Min, "max_value": e.Max}
}

func (e ColumnOfType) Params() map[string]any {
	return map[string]any{"column": e.Target, "type_": e.Kind.String()}
}

func (e RowCountBetween) String() string {
	return fmt.Sprintf("row count between %d and %d", e.Min, e.Max)
}
func (e ColumnExists) String() string  { return fmt.Sprintf("column %s exists", e.Target) }
func (e ColumnUnique) String() string  { return fmt.Sprintf("column %s is unique", e.Target) }
func (e ColumnNotNull) String() string { return fmt.Sprintf("column %s has no missing values", e.Target) }
func (e ColumnValuesBetween) String() string {
	return fmt.Sprintf("column %s values between %g and %g", e.Target, e.Min, e.Max)
}
func (e ColumnOfType) String() string {
	return fmt.Sprintf("column %s is of type %s", e.Target, e.Kind)
}

func (RowCountBetween) expectation()     {}
func (ColumnExists) expectation()        {}
func (ColumnUnique) expectation()        {}
func (ColumnNotNull) expectation()       {}
func (ColumnValuesBetween) expectation() {}
func (ColumnOfType) expectation()        {}
