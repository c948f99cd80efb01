package operations

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"retailflow/internal/cleaning"
	"retailflow/internal/config"
	"retailflow/internal/exporter"
	"retailflow/internal/files"
	"retailflow/internal/history"
	"retailflow/internal/infrastructure"
	"retailflow/internal/validation"
)

// Manager orchestrates pipeline runs: inputs, cleaning, validation,
// promotion and the run report, in that order.
type Manager struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger

	writer          *exporter.CSVWriter
	files           *files.Manager
	fileValidator   *validation.FileValidator
	validator       *validation.Validator
	cleaningOptions cleaning.Options

	generator Generator
	recorder  RunRecorder
	tracer    *RunTracer
	metrics   *infrastructure.PipelineMetrics
	now       func() time.Time

	stages []Stage

	// Active runs
	mu   sync.RWMutex
	runs map[string]*Run
}

// Option configures a Manager
type Option func(*Manager)

// WithGenerator enables regeneration of missing raw inputs
func WithGenerator(g Generator) Option {
	return func(m *Manager) { m.generator = g }
}

// WithRecorder persists every finished run
func WithRecorder(r RunRecorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithTelemetry traces runs and records metrics on the given providers
func WithTelemetry(p *infrastructure.TelemetryProviders) Option {
	return func(m *Manager) { m.tracer = NewRunTracer(p) }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a pipeline manager for cfg
func NewManager(cfg *config.Config, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = infrastructure.WithComponent(logger, "pipeline")

	m := &Manager{
		cfg:             cfg,
		paths:           cfg.Paths(),
		logger:          logger,
		writer:          exporter.NewCSVWriter(logger),
		files:           files.NewManager(logger),
		fileValidator:   validation.NewFileValidator(logger),
		validator:       validation.NewValidator(logger, validation.DefaultSuites(cfg.Quality.Bounds)...),
		cleaningOptions: cleaning.OptionsFromConfig(cfg.Quality),
		tracer:          NewRunTracer(nil),
		now:             time.Now,
		runs:            make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics = m.tracer.Metrics()

	m.stages = []Stage{
		&InputsStage{m: m},
		&CleaningStage{m: m},
		&ValidationStage{m: m},
		&PromotionStage{m: m},
		&ReportStage{m: m},
	}
	return m
}

// RunOptions adjusts a single run
type RunOptions struct {
	// RunID is generated when empty
	RunID          string
	SkipValidation bool
}

// Stages returns the stages in execution order
func (m *Manager) Stages() []Stage {
	return m.stages
}

// ActiveRun returns a run that is still executing
func (m *Manager) ActiveRun(id string) (*Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	return run, ok
}

// RunFullPipeline executes one run to a terminal state. Every failure is
// reported in the returned Result.
func (m *Manager) RunFullPipeline(ctx context.Context, opts RunOptions) Result {
	runID := opts.RunID
	if runID == "" {
		runID = infrastructure.GenerateRunID()
	}
	run := NewRun(runID, m.now())
	run.SkipValidation = opts.SkipValidation || m.cfg.Pipeline.SkipValidation

	ctx = infrastructure.EnsureTraceID(infrastructure.WithRunID(ctx, runID))
	ctx, span := m.tracer.TraceRun(ctx, run)
	defer span.End()

	m.storeRun(run)
	defer m.removeRun(runID)

	m.logRunStart(ctx, run)
	if err := m.paths.EnsureDirectories(); err != nil {
		run.Fail(&OperationError{
			Type:    ErrorTypePromotionIO,
			Stage:   StageIDInputs,
			Message: "failed to create project directories",
			Cause:   err,
		}, m.now())
	} else {
		m.execute(ctx, run)
	}

	res := run.result()
	m.record(ctx, run, res)
	m.tracer.RecordRunCompletion(ctx, span, res)
	m.logRunComplete(ctx, res)
	return res
}

func (m *Manager) execute(ctx context.Context, run *Run) {
	for _, stage := range m.stages {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "pipeline_cancelled", slog.String("stage", stage.ID()))
			run.Fail(NewCancellationError(stage.ID(), err), m.now())
			return
		}

		state := NewStageState(stage.ID(), stage.Name())
		run.SetStage(stage.ID(), state)

		if sk, ok := stage.(Skipper); ok {
			if skip, reason := sk.Skip(run); skip {
				state.Skip(reason)
				m.logStageSkipped(ctx, stage.ID(), reason)
				continue
			}
		}

		if to := stage.RunState(); to != run.CurrentState() {
			if err := run.Transition(to, m.now()); err != nil {
				state.Fail(err)
				run.Fail(err, m.now())
				return
			}
		}

		stageCtx, span := m.tracer.TraceStage(ctx, run, stage)
		m.logStageStart(stageCtx, stage)
		state.Start()
		started := time.Now()

		err := m.executeStage(stageCtx, stage, run)
		if err != nil && GetErrorType(err) == "" && ctx.Err() != nil {
			err = NewCancellationError(stage.ID(), ctx.Err())
		}

		duration := time.Since(started)
		m.tracer.RecordStageCompletion(stageCtx, span, stage.ID(), duration, err)
		span.End()

		if err != nil {
			state.Fail(err)
			m.logStageError(stageCtx, stage.ID(), err)
			run.Fail(err, m.now())
			return
		}
		state.Complete()
		m.logStageComplete(stageCtx, stage.ID(), duration)
	}

	if err := run.Transition(StateDone, m.now()); err != nil {
		run.Fail(err, m.now())
	}
}

// record hands the finished run to the recorder; failures are only logged
func (m *Manager) record(ctx context.Context, run *Run, res Result) {
	if m.recorder == nil {
		return
	}

	run.mu.RLock()
	rec := history.RunRecord{
		ID:               run.ID,
		StartedAt:        run.StartTime,
		FinishedAt:       run.EndTime,
		Success:          res.Success,
		FinalState:       string(res.FinalState),
		ErrorType:        string(res.ErrorType),
		Error:            res.Error,
		ExecutionSeconds: res.ExecutionTime,
		RowsOut:          make(map[string]int, len(run.Cleaning)),
		Checksums:        make(map[string]string, len(run.Checksums)),
		Stats: map[string]any{
			"cleaning":      res.Stats.Cleaning,
			"files_created": res.Stats.FilesCreated,
		},
	}
	for dataset, s := range run.Cleaning {
		rec.RowsOut[dataset] = s.FinalCount
	}
	for name, sum := range run.Checksums {
		rec.Checksums[name] = sum
	}
	run.mu.RUnlock()

	if v := res.Stats.Validation; v != nil {
		rec.SuccessRate = v.OverallSuccessRate
		rec.Stats["validation"] = v
	}

	if err := m.safeRecord(ctx, rec); err != nil {
		m.logger.WarnContext(ctx, "run_history_record_failed", slog.String("error", err.Error()))
	}
}

// executeStage runs stage, turning a panic into a failure of that stage
func (m *Manager) executeStage(ctx context.Context, stage Stage, run *Run) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.ErrorContext(ctx, "stage_panicked",
				slog.String("stage", stage.ID()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = NewStagePanicError(stage.ID(), r)
		}
	}()
	return stage.Execute(ctx, run)
}

func (m *Manager) safeRecord(ctx context.Context, rec history.RunRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recorder panicked: %v", r)
		}
	}()
	return m.recorder.Record(ctx, rec)
}

// timestamp stamps every artefact of a run with its start time
func (m *Manager) timestamp(run *Run) string {
	return run.StartTime.Format(config.TimestampLayout)
}

func (m *Manager) storeRun(run *Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
}

func (m *Manager) removeRun(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
}
