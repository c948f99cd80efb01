package cleaning

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"retailflow/internal/table"
)

// OutlierMethod selects the outlier rule
type OutlierMethod string

const (
	MethodIQR    OutlierMethod = "iqr"
	MethodZScore OutlierMethod = "zscore"
)

// DetectOutliers returns a mask aligned to the rows of t flagging outlying
// values of column. It never mutates t. Non-numeric or absent columns yield
// an all-false mask.
func (c *Cleaner) DetectOutliers(ctx context.Context, t *table.Table, column string, method OutlierMethod) []bool {
	mask := make([]bool, t.Len())
	cells, ok := numericCells(t, column)
	if !ok {
		return mask
	}

	values := make([]float64, 0, len(cells))
	for _, cell := range cells {
		if cell.present {
			values = append(values, cell.value)
		}
	}
	if len(values) == 0 {
		return mask
	}

	var flagged func(float64) bool
	switch method {
	case MethodIQR:
		q1 := Percentile(values, 25)
		q3 := Percentile(values, 75)
		iqr := q3 - q1
		lower := q1 - c.opts.IQRMultiplier*iqr
		upper := q3 + c.opts.IQRMultiplier*iqr
		flagged = func(v float64) bool { return v < lower || v > upper }
	case MethodZScore:
		if len(values) < 2 {
			return mask
		}
		mean, std := stat.MeanStdDev(values, nil)
		if std == 0 || math.IsNaN(std) {
			return mask
		}
		threshold := c.opts.ZScoreThreshold
		flagged = func(v float64) bool { return math.Abs((v-mean)/std) > threshold }
	default:
		c.logger.WarnContext(ctx, "unknown_outlier_method",
			slog.String("column", column),
			slog.String("method", string(method)))
		return mask
	}

	count := 0
	for i, cell := range cells {
		if cell.present && flagged(cell.value) {
			mask[i] = true
			count++
		}
	}

	c.logger.InfoContext(ctx, "outliers_detected",
		slog.String("column", column),
		slog.String("method", string(method)),
		slog.Int("count", count),
		slog.Float64("pct", float64(count)/float64(t.Len())*100))

	return mask
}

type numericCell struct {
	value   float64
	present bool
}

// numericCells reads column as numbers. Null variants count as missing;
// any other non-numeric cell makes the column non-numeric.
func numericCells(t *table.Table, column string) ([]numericCell, bool) {
	if !t.HasColumn(column) {
		return nil, false
	}
	cells := make([]numericCell, t.Len())
	for i, v := range t.Column(column) {
		if IsNullVariant(v) {
			continue
		}
		n, ok := v.Number()
		if !ok {
			return nil, false
		}
		cells[i] = numericCell{value: n, present: true}
	}
	return cells, true
}

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between closest ranks. values is not modified.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	if lower+1 >= n {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[lower+1]*weight
}
