package http

import (
	"context"

	"retailflow/internal/history"
	"retailflow/internal/operations"
)

// PipelineRunner executes pipeline runs
type PipelineRunner interface {
	RunFullPipeline(ctx context.Context, opts operations.RunOptions) operations.Result
	ActiveRun(id string) (*operations.Run, bool)
}

// RunHistory reads recorded runs
type RunHistory interface {
	Get(ctx context.Context, id string) (*history.RunRecord, error)
	List(ctx context.Context, limit int) ([]history.RunRecord, error)
}
