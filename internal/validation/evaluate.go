package validation

import (
	"fmt"

	"retailflow/internal/table"
)

// Result is the outcome of one expectation
type Result struct {
	Expectation Expectation    `json:"-"`
	Type        ExpectationType `json:"expectation_type"`
	Params      map[string]any `json:"kwargs"`
	Success     bool           `json:"success"`
	Observed    map[string]any `json:"result"`
}

// Detail returns the failure detail recorded for a failed expectation
func (r Result) Detail() string {
	if msg, ok := r.Observed["error"].(string); ok {
		return msg
	}
	return ""
}

// EvaluationError reports an expectation that could not be evaluated.
// It is recorded in the failed Result and never returned to callers.
type EvaluationError struct {
	Expectation Expectation
	Reason      string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating %q: %s", e.Expectation.String(), e.Reason)
}

// Evaluate checks e against t. It never panics: a panic raised while
// evaluating is converted into a failed Result carrying the message.
func Evaluate(t *table.Table, e Expectation) (res Result) {
	res = Result{
		Expectation: e,
		Type:        e.Type(),
		Params:      e.Params(),
		Observed:    map[string]any{},
	}

	defer func() {
		if r := recover(); r != nil {
			err := &EvaluationError{Expectation: e, Reason: fmt.Sprint(r)}
			res.Success = false
			res.Observed = map[string]any{"error": err.Error()}
		}
	}()

	if col := e.Column(); col != "" && e.Type() != TypeColumnExists && !t.HasColumn(col) {
		return fail(res, &EvaluationError{Expectation: e, Reason: fmt.Sprintf("column %q not found", col)})
	}

	switch exp := e.(type) {
	case RowCountBetween:
		n := t.Len()
		res.Success = exp.Min <= n && n <= exp.Max
		res.Observed["observed_value"] = n

	case ColumnExists:
		present := t.HasColumn(exp.Target)
		res.Success = present
		res.Observed["observed_value"] = present

	case ColumnUnique:
		distinct := map[string]struct{}{}
		total := 0
		for _, v := range t.Column(exp.Target) {
			if v.IsNull() {
				continue
			}
			total++
			distinct[v.Key()] = struct{}{}
		}
		res.Success = len(distinct) == total
		res.Observed["observed_value"] = len(distinct)
		res.Observed["total_count"] = total

	case ColumnNotNull:
		missing := t.NullCount(exp.Target)
		res.Success = missing == 0
		res.Observed["observed_value"] = missing

	case ColumnValuesBetween:
		if !t.ColumnKind(exp.Target).IsNumeric() {
			return fail(res, &EvaluationError{Expectation: e, Reason: fmt.Sprintf("column %q is not numeric", exp.Target)})
		}
		within, total := 0, 0
		for _, v := range t.Column(exp.Target) {
			n, ok := v.Number()
			if !ok {
				continue
			}
			total++
			if n >= exp.Min && n <= exp.Max {
				within++
			}
		}
		fraction := 0.0
		if total > 0 {
			fraction = float64(within) / float64(total)
		}
		res.Success = within == total
		res.Observed["observed_value"] = fraction
		res.Observed["within_range"] = within
		res.Observed["total_values"] = total

	case ColumnOfType:
		actual := t.ColumnKind(exp.Target)
		res.Success = actual == exp.Kind
		res.Observed["observed_value"] = actual.String()
		res.Observed["expected_value"] = exp.Kind.String()

	default:
		return fail(res, &EvaluationError{Expectation: e, Reason: "unsupported expectation"})
	}

	return res
}

func fail(res Result, err error) Result {
	res.Success = false
	res.Observed = map[string]any{"error": err.Error()}
	return res
}
