package validation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"retailflow/internal/config"
	"retailflow/internal/table"
)

// Validator evaluates expectation suites against staged tables
type Validator struct {
	logger *slog.Logger
	suites []Suite
	now    func() time.Time
}

// NewValidator creates a validator for the given suites, in evaluation order
func NewValidator(logger *slog.Logger, suites ...Suite) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		logger: logger.With(slog.String("component", "validator")),
		suites: suites,
		now:    time.Now,
	}
}

// Suites returns the configured suites
func (v *Validator) Suites() []Suite {
	return v.suites
}

// EvaluateSuite runs every expectation of suite against t
func (v *Validator) EvaluateSuite(ctx context.Context, suite Suite, t *table.Table) SuiteResult {
	results := make([]Result, 0, len(suite.Expectations))
	for _, e := range suite.Expectations {
		r := Evaluate(t, e)
		if detail := r.Detail(); detail != "" {
			v.logger.WarnContext(ctx, "expectation_error",
				slog.String("suite", suite.Name),
				slog.String("expectation", string(e.Type())),
				slog.String("error", detail))
		}
		results = append(results, r)
	}

	sr := newSuiteResult(suite, results)
	v.logger.InfoContext(ctx, "suite_evaluated",
		slog.String("dataset", suite.Dataset),
		slog.String("suite", suite.Name),
		slog.Int("passed", sr.PassedTests),
		slog.Int("total", sr.TotalTests),
		slog.Float64("success_rate", sr.SuccessRate))
	return sr
}

// Validate evaluates each suite whose dataset is present in tables.
// Datasets without a table are skipped and not counted in the summary.
func (v *Validator) Validate(ctx context.Context, tables map[string]*table.Table) *Results {
	var suites []SuiteResult
	for _, suite := range v.suites {
		t, ok := tables[suite.Dataset]
		if !ok || t == nil {
			v.logger.InfoContext(ctx, "suite_skipped", slog.String("dataset", suite.Dataset))
			continue
		}
		suites = append(suites, v.EvaluateSuite(ctx, suite, t))
	}

	res := newResults(suites, v.now())
	v.logger.InfoContext(ctx, "validation_completed",
		slog.Int("datasets_validated", res.Summary.DatasetsValidated),
		slog.Int("total_tests", res.Summary.TotalTests),
		slog.Int("passed_tests", res.Summary.PassedTests),
		slog.Float64("overall_success_rate", res.Summary.OverallSuccessRate))
	return res
}

// ValidateStaging loads the staged CSV of every suite's dataset from paths
// and validates them. Missing staged files are skipped.
func (v *Validator) ValidateStaging(ctx context.Context, paths *config.Paths) (*Results, error) {
	tables := make(map[string]*table.Table, len(v.suites))
	for _, suite := range v.suites {
		t, err := table.LoadCSV(paths.GetStagingPath(config.StagedFiles[suite.Dataset]))
		if errors.Is(err, table.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tables[suite.Dataset] = t
	}
	return v.Validate(ctx, tables), nil
}
