package cleaning

import (
	"context"
	"log/slog"
	"strings"

	"retailflow/internal/table"
)

// RemoveDuplicates keeps the first row of every group of rows equal on
// subset, or on the whole row when subset is empty. Subset columns absent
// from t are ignored. It returns the new table and the number of rows dropped.
func (c *Cleaner) RemoveDuplicates(ctx context.Context, t *table.Table, subset ...string) (*table.Table, int) {
	keyColumns := make([]string, 0, len(subset))
	for _, col := range subset {
		if t.HasColumn(col) {
			keyColumns = append(keyColumns, col)
		}
	}
	if len(subset) > 0 && len(keyColumns) == 0 {
		c.logger.WarnContext(ctx, "duplicate_removal_skipped",
			slog.Any("subset", subset),
			slog.String("reason", "no subset column found"))
		return t.Clone(), 0
	}
	if len(keyColumns) == 0 {
		keyColumns = t.Columns()
	}

	seen := make(map[string]struct{}, t.Len())
	out := t.Filter(func(i int) bool {
		var b strings.Builder
		for _, col := range keyColumns {
			b.WriteString(t.Cell(i, col).Key())
			b.WriteByte(0x1f)
		}
		k := b.String()
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
		return true
	})

	removed := t.Len() - out.Len()
	rate := 0.0
	if t.Len() > 0 {
		rate = float64(removed) / float64(t.Len()) * 100
	}
	c.logger.InfoContext(ctx, "duplicates_removed",
		slog.Any("subset", keyColumns),
		slog.Int("removed", removed),
		slog.Float64("removed_pct", rate))

	return out, removed
}
