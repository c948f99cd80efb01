package operations

import (
	"context"

	"retailflow/internal/history"
)

// Generator regenerates the raw inputs when they are missing
type Generator interface {
	Generate(ctx context.Context, rawDir string) error
}

// RunRecorder persists the outcome of finished runs
type RunRecorder interface {
	Record(ctx context.Context, run history.RunRecord) error
}
