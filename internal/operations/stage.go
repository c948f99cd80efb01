package operations

import (
	"context"
	"sync"
	"time"
)

// Stage identifiers
const (
	StageIDInputs     = "inputs"
	StageIDCleaning   = "cleaning"
	StageIDValidation = "validation"
	StageIDPromotion  = "promotion"
	StageIDReport     = "report"
)

// Stage represents a single step of a pipeline run
type Stage interface {
	// ID returns the unique identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// RunState is the state the run is in while this stage executes
	RunState() RunState

	// Execute runs the stage against the run; a returned error is terminal for the run
	Execute(ctx context.Context, run *Run) error
}

// Skipper is implemented by stages that configuration can switch off
type Skipper interface {
	Skip(run *Run) (bool, string)
}

// StageStatus represents the current status of a stage
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
	StageStatusSkipped   StageStatus = "skipped"
)

// StageState represents the runtime state of a stage
type StageState struct {
	mu        sync.RWMutex `json:"-"`
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Status    StageStatus  `json:"status"`
	StartTime *time.Time   `json:"start_time,omitempty"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
	Message   string       `json:"message,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// NewStageState creates a new stage state with default values
func NewStageState(id, name string) *StageState {
	return &StageState{
		ID:     id,
		Name:   name,
		Status: StageStatusPending,
	}
}

// Start marks the stage as active and sets the start time
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StageStatusActive
}

// Complete marks the stage as completed and sets the end time
func (s *StageState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusCompleted
}

// Fail marks the stage as failed with the given error
func (s *StageState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusFailed
	if err != nil {
		s.Error = err.Error()
	}
}

// Skip marks the stage as skipped with the given reason
func (s *StageState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusSkipped
	s.Message = reason
}

// Duration returns how long the stage ran, zero if it has not finished
func (s *StageState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.StartTime == nil || s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(*s.StartTime)
}

// GetStatus returns the stage status
func (s *StageState) GetStatus() StageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}
