package cleaning

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"retailflow/internal/table"
)

// NullStrategy selects how missing cells are resolved
type NullStrategy string

const (
	StrategyRemove       NullStrategy = "remove"
	StrategyForwardFill  NullStrategy = "forward_fill"
	StrategyBackwardFill NullStrategy = "backward_fill"
	StrategyMedian       NullStrategy = "median"
	StrategyMode         NullStrategy = "mode"
)

// nullTokens are the literal spellings of a missing value found in raw files.
// "nan" and "NaN" are how a native missing marker looks once stringified.
var nullTokens = map[string]bool{
	"":     true,
	"NULL": true,
	"null": true,
	"N/A":  true,
	"n/a":  true,
	"#N/A": true,
	"None": true,
	"nan":  true,
	"NaN":  true,
}

// IsNullVariant reports whether v counts as missing: a null cell, a
// whitespace-only string or one of the null tokens.
func IsNullVariant(v table.Value) bool {
	if v.IsNull() {
		return true
	}
	s, ok := v.Str()
	if !ok {
		return false
	}
	return nullTokens[s] || strings.TrimSpace(s) == ""
}

// NormalizeNulls maps every null variant in column to a missing cell and then
// resolves missing cells with strategy. Median on a non-numeric column leaves
// the missing cells in place.
func (c *Cleaner) NormalizeNulls(ctx context.Context, t *table.Table, column string, strategy NullStrategy) *table.Table {
	if !t.HasColumn(column) {
		c.logger.DebugContext(ctx, "null_normalization_skipped",
			slog.String("column", column),
			slog.String("reason", "column not found"))
		return t.Clone()
	}

	out := t.Clone()
	before := 0
	for i := 0; i < out.Len(); i++ {
		if IsNullVariant(out.Cell(i, column)) {
			out.SetCell(i, column, table.Null())
			before++
		}
	}

	switch strategy {
	case StrategyRemove:
		out = out.Filter(func(i int) bool { return !out.Cell(i, column).IsNull() })
	case StrategyForwardFill:
		var last table.Value
		for i := 0; i < out.Len(); i++ {
			if v := out.Cell(i, column); v.IsNull() {
				out.SetCell(i, column, last)
			} else {
				last = v
			}
		}
	case StrategyBackwardFill:
		var next table.Value
		for i := out.Len() - 1; i >= 0; i-- {
			if v := out.Cell(i, column); v.IsNull() {
				out.SetCell(i, column, next)
			} else {
				next = v
			}
		}
	case StrategyMedian:
		fillMedian(out, column, before > 0)
	case StrategyMode:
		if mode, ok := Mode(out.Column(column)); ok {
			for i := 0; i < out.Len(); i++ {
				if out.Cell(i, column).IsNull() {
					out.SetCell(i, column, mode)
				}
			}
		}
	default:
		c.logger.WarnContext(ctx, "unknown_null_strategy",
			slog.String("column", column),
			slog.String("strategy", string(strategy)))
	}

	c.logger.InfoContext(ctx, "nulls_normalized",
		slog.String("column", column),
		slog.String("strategy", string(strategy)),
		slog.Int("nulls_before", before),
		slog.Int("nulls_after", out.NullCount(column)))

	return out
}

// fillMedian fills missing cells of a numeric column with the median of its
// values. A column that had missing cells becomes a float column.
func fillMedian(t *table.Table, column string, hadMissing bool) {
	if !t.ColumnKind(column).IsNumeric() {
		return
	}

	values := make([]float64, 0, t.Len())
	for _, v := range t.Column(column) {
		if n, ok := v.Number(); ok {
			values = append(values, n)
		}
	}
	if len(values) == 0 {
		return
	}
	median := Percentile(values, 50)

	for i := 0; i < t.Len(); i++ {
		v := t.Cell(i, column)
		switch {
		case v.IsNull():
			t.SetCell(i, column, table.Float(median))
		case hadMissing && v.Kind() == table.KindInt:
			n, _ := v.Number()
			t.SetCell(i, column, table.Float(n))
		}
	}
}

// Mode returns the most frequent non-null value. Ties resolve to the
// smallest value: numeric order for numbers, lexicographic for strings.
func Mode(values []table.Value) (table.Value, bool) {
	counts := make(map[string]int)
	first := make(map[string]table.Value)
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		k := v.Key()
		if _, ok := first[k]; !ok {
			first[k] = v
		}
		counts[k]++
	}
	if len(counts) == 0 {
		return table.Null(), false
	}

	best := 0
	var candidates []table.Value
	for k, n := range counts {
		switch {
		case n > best:
			best = n
			candidates = []table.Value{first[k]}
		case n == best:
			candidates = append(candidates, first[k])
		}
	}
	return slices.MinFunc(candidates, func(a, b table.Value) int { return a.Compare(b) }), true
}
