package cleaning

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"retailflow/internal/table"
)

// NormalizeText trims and collapses whitespace in column and title-cases
// every word. Null variants, empty results and "Nan" become missing.
// A column absent from t is passed through unchanged.
func (c *Cleaner) NormalizeText(ctx context.Context, t *table.Table, column string) *table.Table {
	out := t.Clone()
	if !t.HasColumn(column) {
		return out
	}

	title := cases.Title(language.French)
	before := distinctCount(t.Column(column))

	for i := 0; i < out.Len(); i++ {
		v := out.Cell(i, column)
		if IsNullVariant(v) {
			out.SetCell(i, column, table.Null())
			continue
		}
		s := strings.Join(strings.Fields(v.Text()), " ")
		s = titleWords(title, s)
		if s == "" || s == "Nan" {
			out.SetCell(i, column, table.Null())
			continue
		}
		out.SetCell(i, column, table.String(s))
	}

	c.logger.InfoContext(ctx, "text_normalized",
		slog.String("column", column),
		slog.Int("unique_before", before),
		slog.Int("unique_after", distinctCount(out.Column(column))))

	return out
}

// titleWords title-cases s, also capitalizing the letter after an apostrophe
// so elided articles read "L'Isle-Adam".
func titleWords(title cases.Caser, s string) string {
	if !strings.ContainsFunc(s, isApostrophe) {
		return title.String(s)
	}
	var b strings.Builder
	start := 0
	for i, r := range s {
		if isApostrophe(r) {
			b.WriteString(title.String(s[start:i]))
			b.WriteRune(r)
			start = i + len(string(r))
		}
	}
	b.WriteString(title.String(s[start:]))
	return b.String()
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func distinctCount(values []table.Value) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if !v.IsNull() {
			seen[v.Key()] = struct{}{}
		}
	}
	return len(seen)
}
