package validation

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"retailflow/internal/exporter"
)

// Text renders the human readable validation report
func (r *Results) Text() string {
	if len(r.Suites) == 0 {
		return "No validation results available."
	}

	var b strings.Builder
	b.WriteString("DATA VALIDATION REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Validation Time: %s\n", r.Summary.ValidationTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "Datasets Validated: %d\n", r.Summary.DatasetsValidated)
	fmt.Fprintf(&b, "Overall Success Rate: %.1f%%\n\n", r.Summary.OverallSuccessRate)

	for _, s := range r.Suites {
		status := "PASSED"
		if !s.Success {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "%s - %s\n", strings.ToUpper(s.Dataset), status)
		fmt.Fprintf(&b, "  Tests: %d/%d passed (%.1f%%)\n", s.PassedTests, s.TotalTests, s.SuccessRate)
		if failed := s.Failed(); len(failed) > 0 {
			b.WriteString("  Failed tests:\n")
			for _, f := range failed {
				fmt.Fprintf(&b, "    - %s: %s\n", f.Type, formatObserved(f.Observed))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// JSON returns the machine-readable dump: one entry per dataset plus "summary"
func (r *Results) JSON() map[string]any {
	out := make(map[string]any, len(r.Suites)+1)
	for _, s := range r.Suites {
		out[s.Dataset] = s
	}
	out["summary"] = r.Summary
	return out
}

// WriteReports writes validation_report_<ts>.txt and validation_results_<ts>.json
// into dir and returns their paths.
func (r *Results) WriteReports(dir, timestamp string) (textPath, jsonPath string, err error) {
	textPath = filepath.Join(dir, "validation_report_"+timestamp+".txt")
	jsonPath = filepath.Join(dir, "validation_results_"+timestamp+".json")
	if err := exporter.WriteText(textPath, r.Text()); err != nil {
		return "", "", err
	}
	if err := exporter.WriteJSON(jsonPath, r.JSON()); err != nil {
		return "", "", err
	}
	return textPath, jsonPath, nil
}

func formatObserved(observed map[string]any) string {
	keys := slices.Sorted(maps.Keys(observed))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, observed[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
