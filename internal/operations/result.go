package operations

import (
	"retailflow/internal/cleaning"
	"retailflow/internal/validation"
)

// Stats aggregates what a run has produced so far
type Stats struct {
	Cleaning             map[string]cleaning.Stats `json:"cleaning,omitempty"`
	Validation           *validation.Summary       `json:"validation,omitempty"`
	ExecutionTimeSeconds float64                   `json:"execution_time_seconds"`
	FilesCreated         []string                  `json:"files_created,omitempty"`
}

// Result is the structured outcome of RunFullPipeline. Failures are reported
// here, never returned as errors.
type Result struct {
	RunID         string    `json:"run_id"`
	Success       bool      `json:"success"`
	ExecutionTime float64   `json:"execution_time"`
	Stats         Stats     `json:"stats"`
	FinalState    RunState  `json:"final_state"`
	Error         string    `json:"error,omitempty"`
	ErrorType     ErrorType `json:"error_type,omitempty"`
	Reports       []string  `json:"reports,omitempty"`
}

func (r *Run) stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		Cleaning:     make(map[string]cleaning.Stats, len(r.Cleaning)),
		FilesCreated: append([]string(nil), r.Written...),
	}
	for k, v := range r.Cleaning {
		s.Cleaning[k] = v
	}
	if r.Validation != nil {
		summary := r.Validation.Summary
		s.Validation = &summary
	}
	if !r.EndTime.IsZero() {
		s.ExecutionTimeSeconds = r.EndTime.Sub(r.StartTime).Seconds()
	}
	return s
}

func (r *Run) result() Result {
	stats := r.stats()
	res := Result{
		RunID:         r.ID,
		Success:       r.CurrentState() == StateDone,
		ExecutionTime: stats.ExecutionTimeSeconds,
		Stats:         stats,
		FinalState:    r.CurrentState(),
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res.Reports = append([]string(nil), r.Reports...)
	if r.Err != nil {
		res.Error = r.Err.Error()
		res.ErrorType = GetErrorType(r.Err)
	}
	return res
}
