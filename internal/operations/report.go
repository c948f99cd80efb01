package operations

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"retailflow/internal/config"
)

// RunReport renders the human readable report of a run that reached promotion
func RunReport(run *Run, projectRoot string, now time.Time) string {
	stats := run.stats()
	elapsed := run.Elapsed(now)

	var b strings.Builder
	b.WriteString("DATA PIPELINE EXECUTION REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Execution Time: %s\n", now.Format(time.DateTime))
	fmt.Fprintf(&b, "Run ID: %s\n", run.ID)
	fmt.Fprintf(&b, "Project Root: %s\n\n", projectRoot)

	if len(stats.Cleaning) > 0 {
		b.WriteString("DATA CLEANING RESULTS:\n")
		for _, dataset := range config.Datasets {
			s, ok := stats.Cleaning[dataset]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %s: %d -> %d records (%.1f%% cleaned)\n",
				dataset, s.InitialCount, s.FinalCount, s.CleaningRate)
		}
		b.WriteString("\n")
	}

	switch v := stats.Validation; {
	case v == nil:
		b.WriteString("DATA VALIDATION: SKIPPED\n\n")
	default:
		status := "PASSED"
		if !v.OverallSuccess {
			status = "PARTIAL"
		}
		fmt.Fprintf(&b, "DATA VALIDATION: %s\n", status)
		fmt.Fprintf(&b, "  Success Rate: %.1f%%\n", v.OverallSuccessRate)
		fmt.Fprintf(&b, "  Tests: %d/%d\n\n", v.PassedTests, v.TotalTests)
	}

	b.WriteString("FILES CREATED:\n")
	for _, f := range stats.FilesCreated {
		rel, err := filepath.Rel(projectRoot, f)
		if err != nil {
			rel = f
		}
		fmt.Fprintf(&b, "  %s\n", rel)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Elapsed: %.1f seconds\n", elapsed.Seconds())
	b.WriteString("PIPELINE STATUS: COMPLETED SUCCESSFULLY\n")
	return b.String()
}
