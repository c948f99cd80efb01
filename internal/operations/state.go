package operations

import (
	"slices"
	"sync"
	"time"

	"retailflow/internal/cleaning"
	"retailflow/internal/table"
	"retailflow/internal/validation"
)

// RunState is a state of the pipeline run state machine
type RunState string

const (
	StateStart      RunState = "start"
	StateCleaning   RunState = "cleaning"
	StateValidating RunState = "validating"
	StatePromoting  RunState = "promoting"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)

// transitions lists the states reachable from each state. Done and failed are terminal.
var transitions = map[RunState][]RunState{
	StateStart:      {StateCleaning, StateFailed},
	StateCleaning:   {StateValidating, StatePromoting, StateFailed},
	StateValidating: {StatePromoting, StateFailed},
	StatePromoting:  {StateDone, StateFailed},
}

// Terminal reports whether no transition leaves s
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether the state machine allows from -> to
func CanTransition(from, to RunState) bool {
	return slices.Contains(transitions[from], to)
}

// Transition records one state change
type Transition struct {
	From RunState  `json:"from"`
	To   RunState  `json:"to"`
	At   time.Time `json:"at"`
}

// Run is the mutable record of one pipeline execution. It is finalized
// once it reaches a terminal state.
type Run struct {
	mu sync.RWMutex

	ID        string
	State     RunState
	StartTime time.Time
	EndTime   time.Time
	History   []Transition

	SkipValidation bool
	Regenerated    bool

	Inputs     map[string]string
	Tables     map[string]*table.Table
	Cleaning   map[string]cleaning.Stats
	Validation *validation.Results
	GatePassed bool
	Written    []string
	Backups    []string
	Checksums  map[string]string
	Reports    []string

	Stages map[string]*StageState
	Err    error
}

// NewRun creates a run in the start state
func NewRun(id string, now time.Time) *Run {
	return &Run{
		ID:        id,
		State:     StateStart,
		StartTime: now,
		Inputs:    make(map[string]string),
		Tables:    make(map[string]*table.Table),
		Cleaning:  make(map[string]cleaning.Stats),
		Checksums: make(map[string]string),
		Stages:    make(map[string]*StageState),
	}
}

// Transition moves the run to state to
func (r *Run) Transition(to RunState, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !CanTransition(r.State, to) {
		return NewInvalidTransitionError(r.State, to)
	}
	r.History = append(r.History, Transition{From: r.State, To: to, At: now})
	r.State = to
	if to.Terminal() {
		r.EndTime = now
	}
	return nil
}

// Fail moves the run to the failed state, keeping the first error
func (r *Run) Fail(err error, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State.Terminal() {
		return
	}
	r.History = append(r.History, Transition{From: r.State, To: StateFailed, At: now})
	r.State = StateFailed
	r.EndTime = now
	if r.Err == nil {
		r.Err = err
	}
}

// CurrentState returns the run's state
func (r *Run) CurrentState() RunState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State
}

// Elapsed returns the wall-clock duration of the run so far
func (r *Run) Elapsed(now time.Time) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.EndTime.IsZero() {
		return r.EndTime.Sub(r.StartTime)
	}
	return now.Sub(r.StartTime)
}

// GetStage returns the state of a specific stage
func (r *Run) GetStage(id string) *StageState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Stages[id]
}

// SetStage updates the state of a specific stage
func (r *Run) SetStage(id string, state *StageState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stages[id] = state
}

func (r *Run) addReports(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reports = append(r.Reports, paths...)
}
