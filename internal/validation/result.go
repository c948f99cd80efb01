package validation

import (
	"time"
)

// SuiteResult aggregates one suite's evaluation
type SuiteResult struct {
	Dataset     string   `json:"dataset"`
	Suite       string   `json:"suite"`
	Results     []Result `json:"results"`
	PassedTests int      `json:"passed_tests"`
	FailedTests int      `json:"failed_tests"`
	TotalTests  int      `json:"total_tests"`
	SuccessRate float64  `json:"success_rate"`
	Success     bool     `json:"success"`
}

// Failed returns the failed results in suite order
func (s SuiteResult) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}

func newSuiteResult(suite Suite, results []Result) SuiteResult {
	passed := 0
	for _, r := range results {
		if r.Success {
			passed++
		}
	}
	total := len(results)
	return SuiteResult{
		Dataset:     suite.Dataset,
		Suite:       suite.Name,
		Results:     results,
		PassedTests: passed,
		FailedTests: total - passed,
		TotalTests:  total,
		SuccessRate: rate(passed, total),
		Success:     passed == total,
	}
}

// Summary aggregates every evaluated suite of one run
type Summary struct {
	ValidationTime     time.Time `json:"validation_time"`
	DatasetsValidated  int       `json:"datasets_validated"`
	TotalTests         int       `json:"total_tests"`
	PassedTests        int       `json:"passed_tests"`
	OverallSuccessRate float64   `json:"overall_success_rate"`
	OverallSuccess     bool      `json:"overall_success"`
}

// FailureRate is 100 minus the overall success rate
func (s Summary) FailureRate() float64 {
	return 100 - s.OverallSuccessRate
}

// PassesGate reports whether the run may be promoted at the given minimum
// success rate. A rate exactly at the threshold passes; a summary with no
// tests never does.
func (s Summary) PassesGate(threshold float64) bool {
	if s.TotalTests == 0 {
		return false
	}
	return s.OverallSuccessRate >= threshold
}

// Results is the outcome of validating every staged dataset
type Results struct {
	Suites  []SuiteResult `json:"suites"`
	Summary Summary       `json:"summary"`
}

// Suite returns the result for dataset, if it was validated
func (r *Results) Suite(dataset string) (SuiteResult, bool) {
	for _, s := range r.Suites {
		if s.Dataset == dataset {
			return s, true
		}
	}
	return SuiteResult{}, false
}

func newResults(suites []SuiteResult, now time.Time) *Results {
	total, passed := 0, 0
	for _, s := range suites {
		total += s.TotalTests
		passed += s.PassedTests
	}
	return &Results{
		Suites: suites,
		Summary: Summary{
			ValidationTime:     now,
			DatasetsValidated:  len(suites),
			TotalTests:         total,
			PassedTests:        passed,
			OverallSuccessRate: rate(passed, total),
			OverallSuccess:     total > 0 && passed == total,
		},
	}
}

func rate(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passed) * 100 / float64(total)
}
