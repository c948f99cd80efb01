package cleaning

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"retailflow/internal/config"
)

// Report renders the cleaning stats recorded for the datasets in processing order
func Report(stats map[string]Stats, now time.Time) string {
	p := message.NewPrinter(language.English)

	var b strings.Builder
	b.WriteString("DATA CLEANING REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	p.Fprintf(&b, "Timestamp: %s\n\n", now.Format(time.DateTime))

	for _, dataset := range config.Datasets {
		s, ok := stats[dataset]
		if !ok {
			continue
		}
		p.Fprintf(&b, "%s\n", strings.ToUpper(dataset))
		p.Fprintf(&b, "  Initial records: %d\n", s.InitialCount)
		p.Fprintf(&b, "  Final records: %d\n", s.FinalCount)
		p.Fprintf(&b, "  Removed: %d\n", s.RemovedCount)
		p.Fprintf(&b, "  Cleaning rate: %.1f%%\n\n", s.CleaningRate)
	}
	return b.String()
}
