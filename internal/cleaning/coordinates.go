package cleaning

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"retailflow/internal/table"
)

// RepairCoordinates parses latColumn and lonColumn as decimal degrees,
// accepting comma decimals. Unparsable cells and values outside the
// operating region become missing.
func (c *Cleaner) RepairCoordinates(ctx context.Context, t *table.Table, latColumn, lonColumn string) *table.Table {
	out := t.Clone()
	b := c.opts.Bounds
	c.repairCoordinate(ctx, out, latColumn, b.MinLat, b.MaxLat)
	c.repairCoordinate(ctx, out, lonColumn, b.MinLon, b.MaxLon)
	return out
}

func (c *Cleaner) repairCoordinate(ctx context.Context, t *table.Table, column string, lo, hi float64) {
	if !t.HasColumn(column) {
		return
	}

	unparsable, outOfRange := 0, 0
	for i := 0; i < t.Len(); i++ {
		v := t.Cell(i, column)
		if v.IsNull() {
			continue
		}
		f, ok := parseCoordinate(v)
		if !ok {
			t.SetCell(i, column, table.Null())
			unparsable++
			continue
		}
		if f < lo || f > hi {
			t.SetCell(i, column, table.Null())
			outOfRange++
			continue
		}
		t.SetCell(i, column, table.Float(f))
	}

	if outOfRange > 0 {
		c.logger.WarnContext(ctx, "invalid_coordinates",
			slog.String("column", column),
			slog.Int("count", outOfRange),
			slog.Float64("min", lo),
			slog.Float64("max", hi))
	}
	c.logger.InfoContext(ctx, "coordinates_repaired",
		slog.String("column", column),
		slog.Int("unparsable", unparsable),
		slog.Int("out_of_range", outOfRange))
}

func parseCoordinate(v table.Value) (float64, bool) {
	if n, ok := v.Number(); ok {
		return n, true
	}
	s, ok := v.Str()
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
