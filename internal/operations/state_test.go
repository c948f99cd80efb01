package operations

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to RunState
		want     bool
	}{
		{StateStart, StateCleaning, true},
		{StateStart, StateFailed, true},
		{StateStart, StateValidating, false},
		{StateCleaning, StateValidating, true},
		{StateCleaning, StatePromoting, true},
		{StateCleaning, StateDone, false},
		{StateValidating, StatePromoting, true},
		{StateValidating, StateFailed, true},
		{StatePromoting, StateDone, true},
		{StatePromoting, StateFailed, true},
		{StateDone, StateFailed, false},
		{StateFailed, StateStart, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestRunTransition(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	run := NewRun("run-1", start)

	require.NoError(t, run.Transition(StateCleaning, start.Add(time.Second)))
	require.NoError(t, run.Transition(StateValidating, start.Add(2*time.Second)))

	err := run.Transition(StateDone, start.Add(3*time.Second))
	require.Error(t, err)
	assert.True(t, IsType(err, ErrorTypeInvalidState))
	assert.Equal(t, StateValidating, run.CurrentState())

	require.NoError(t, run.Transition(StatePromoting, start.Add(4*time.Second)))
	require.NoError(t, run.Transition(StateDone, start.Add(5*time.Second)))

	assert.True(t, run.CurrentState().Terminal())
	assert.Len(t, run.History, 4)
	assert.Equal(t, 5*time.Second, run.Elapsed(start.Add(time.Hour)))
}

func TestRunFailKeepsFirstError(t *testing.T) {
	start := time.Now()
	run := NewRun("run-2", start)
	require.NoError(t, run.Transition(StateCleaning, start))

	first := NewCleaningError("magasins", errors.New("boom"))
	run.Fail(first, start.Add(time.Second))
	run.Fail(errors.New("second"), start.Add(2*time.Second))

	assert.Equal(t, StateFailed, run.CurrentState())
	assert.Same(t, first, run.Err)
	assert.Len(t, run.History, 2)

	res := run.result()
	assert.False(t, res.Success)
	assert.Equal(t, ErrorTypeCleaning, res.ErrorType)
	assert.InDelta(t, 1.0, res.ExecutionTime, 1e-9)
}
