package cleaning

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"retailflow/internal/table"
)

// dateLayouts are tried in order; the first that parses wins.
// Ambiguous day/month strings therefore resolve day-first.
var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"2006/1/2",
}

// invalidDateFragments mark strings known to be impossible dates: day 32,
// month 13 in day/month order, zeroed dates and Feb 30/31.
var invalidDateFragments = []string{"32/", "/13/", "00/00/", "31/02/", "30/02/"}

// ParseDate converts one raw cell to a date
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, frag := range invalidDateFragments {
		if strings.Contains(s, frag) {
			return time.Time{}, false
		}
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	d, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// RepairDates parses every cell of column into a date; failures become missing.
// A column absent from t is passed through unchanged.
func (c *Cleaner) RepairDates(ctx context.Context, t *table.Table, column string) *table.Table {
	out := t.Clone()
	if !t.HasColumn(column) {
		return out
	}

	before := 0
	for i := 0; i < out.Len(); i++ {
		v := out.Cell(i, column)
		if v.IsNull() {
			continue
		}
		before++
		if v.Kind() == table.KindDate {
			continue
		}
		if d, ok := ParseDate(v.Text()); ok {
			out.SetCell(i, column, table.Date(d))
		} else {
			out.SetCell(i, column, table.Null())
		}
	}

	c.logger.InfoContext(ctx, "dates_repaired",
		slog.String("column", column),
		slog.Int("values_before", before),
		slog.Int("valid_dates", out.Len()-out.NullCount(column)))

	return out
}
