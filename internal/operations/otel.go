package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"retailflow/internal/infrastructure"
)

const (
	TracerName = "retailflow.pipeline"
)

// RunTracer provides OpenTelemetry spans and metrics for pipeline runs
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewRunTracer creates a tracer on the given providers. A nil providers value
// yields the global tracer and no-op metrics.
func NewRunTracer(providers *infrastructure.TelemetryProviders) *RunTracer {
	rt := &RunTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: infrastructure.NoopPipelineMetrics(),
	}
	if providers == nil {
		return rt
	}
	if providers.Tracer != nil {
		rt.tracer = providers.Tracer
	}
	if providers.Metrics != nil {
		rt.metrics = providers.Metrics
	}
	return rt
}

// Metrics returns the pipeline instruments
func (rt *RunTracer) Metrics() *infrastructure.PipelineMetrics {
	return rt.metrics
}

// TraceRun starts the span covering a full run
func (rt *RunTracer) TraceRun(ctx context.Context, run *Run) (context.Context, trace.Span) {
	ctx, span := rt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", run.ID),
			attribute.Bool("run.skip_validation", run.SkipValidation),
		),
	)
	rt.metrics.ActiveRuns.Add(ctx, 1)
	return ctx, span
}

// TraceStage starts the span of one stage
func (rt *RunTracer) TraceStage(ctx context.Context, run *Run, stage Stage) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, fmt.Sprintf("pipeline.stage.%s", stage.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", run.ID),
			attribute.String("stage.id", stage.ID()),
			attribute.String("run.state", string(stage.RunState())),
		),
	)
}

// RecordStageCompletion closes out the span of one stage
func (rt *RunTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stageID string, duration time.Duration, err error) {
	rt.metrics.RecordStage(ctx, stageID, duration.Seconds())
	span.SetAttributes(attribute.Float64("stage.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "stage completed")
}

// RecordRunCompletion closes out the span of a run
func (rt *RunTracer) RecordRunCompletion(ctx context.Context, span trace.Span, res Result) {
	status := "success"
	if !res.Success {
		status = "failure"
	}
	rt.metrics.RecordRun(ctx, status, res.ExecutionTime)
	rt.metrics.ActiveRuns.Add(ctx, -1)

	span.SetAttributes(
		attribute.String("run.final_state", string(res.FinalState)),
		attribute.Float64("run.duration_seconds", res.ExecutionTime),
	)
	if res.Success {
		span.SetStatus(codes.Ok, "run completed")
		return
	}
	span.SetAttributes(attribute.String("error.type", string(res.ErrorType)))
	span.SetStatus(codes.Error, res.Error)
}
