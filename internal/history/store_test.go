package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "logs", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	run := RunRecord{
		ID:               "run-1",
		StartedAt:        started,
		FinishedAt:       started.Add(3 * time.Second),
		Success:          true,
		FinalState:       "done",
		ExecutionSeconds: 3,
		SuccessRate:      100,
		Stats:            map[string]any{"magasins": map[string]any{"final_count": 47.0}},
		RowsOut:          map[string]int{"magasins": 47},
		Checksums:        map[string]string{"magasins_performance.csv": "abc"},
	}
	require.NoError(t, s.Record(ctx, run))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, *got)
}

func TestRecordReplacesExistingRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, RunRecord{ID: "run-1", StartedAt: now, FinishedAt: now, FinalState: "cleaning"}))
	require.NoError(t, s.Record(ctx, RunRecord{
		ID: "run-1", StartedAt: now, FinishedAt: now, FinalState: "failed",
		ErrorType: "validation_gate", Error: "too many failures",
	}))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.FinalState)
	assert.Equal(t, "validation_gate", got.ErrorType)
	assert.False(t, got.Success)
}

func TestGetUnknown(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		at := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Record(ctx, RunRecord{ID: id, StartedAt: at, FinishedAt: at, FinalState: "done", Success: true}))
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
