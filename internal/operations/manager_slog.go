package operations

import (
	"context"
	"log/slog"
	"time"
)

func (m *Manager) logRunStart(ctx context.Context, run *Run) {
	m.logger.InfoContext(ctx, "pipeline_run_start",
		slog.String("project_root", m.paths.ProjectRoot),
		slog.Bool("skip_validation", run.SkipValidation),
		slog.Bool("strict_gate", m.cfg.Pipeline.StrictGate))
}

func (m *Manager) logRunComplete(ctx context.Context, res Result) {
	if res.Success {
		m.logger.InfoContext(ctx, "pipeline_run_complete",
			slog.String("final_state", string(res.FinalState)),
			slog.Float64("execution_time", res.ExecutionTime),
			slog.Int("files_created", len(res.Stats.FilesCreated)))
		return
	}
	m.logger.ErrorContext(ctx, "pipeline_run_failed",
		slog.String("final_state", string(res.FinalState)),
		slog.String("error_type", string(res.ErrorType)),
		slog.String("error", res.Error),
		slog.Float64("execution_time", res.ExecutionTime))
}

func (m *Manager) logStageStart(ctx context.Context, stage Stage) {
	m.logger.InfoContext(ctx, "stage_start",
		slog.String("stage", stage.ID()),
		slog.String("state", string(stage.RunState())))
}

func (m *Manager) logStageComplete(ctx context.Context, stageID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "stage_complete",
		slog.String("stage", stageID),
		slog.Duration("duration", duration))
}

func (m *Manager) logStageSkipped(ctx context.Context, stageID, reason string) {
	m.logger.InfoContext(ctx, "stage_skipped",
		slog.String("stage", stageID),
		slog.String("reason", reason))
}

func (m *Manager) logStageError(ctx context.Context, stageID string, err error) {
	m.logger.ErrorContext(ctx, "stage_error",
		slog.String("stage", stageID),
		slog.String("error_type", string(GetErrorType(err))),
		slog.String("error", err.Error()))
}
