package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"retailflow/internal/cleaning"
	"retailflow/internal/config"
	"retailflow/internal/exporter"
	"retailflow/internal/files"
	"retailflow/internal/infrastructure"
	"retailflow/internal/table"
)

// InputsStage checks the raw inputs, regenerating them once if any is missing
type InputsStage struct {
	m *Manager
}

func (s *InputsStage) ID() string         { return StageIDInputs }
func (s *InputsStage) Name() string       { return "Raw Input Check" }
func (s *InputsStage) RunState() RunState { return StateStart }

func (s *InputsStage) Execute(ctx context.Context, run *Run) error {
	m := s.m
	missing := m.fileValidator.MissingInputs(m.paths)
	if len(missing) > 0 {
		m.logger.ErrorContext(ctx, "raw_inputs_missing", slog.Any("datasets", missing))
		if !m.cfg.Pipeline.RegenerateOnMissing || m.generator == nil {
			return NewMissingInputError(missing)
		}

		m.logger.InfoContext(ctx, "regenerating_raw_inputs", slog.String("raw_dir", m.paths.RawDir))
		run.Regenerated = true
		if err := m.generator.Generate(ctx, m.paths.RawDir); err != nil {
			m.logger.ErrorContext(ctx, "regeneration_failed", slog.String("error", err.Error()))
		}
		if missing = m.fileValidator.MissingInputs(m.paths); len(missing) > 0 {
			return NewMissingInputError(missing)
		}
	}

	for _, dataset := range config.Datasets {
		path, err := m.fileValidator.ResolveInput(m.paths, dataset)
		if err != nil {
			return NewMissingInputError([]string{dataset})
		}
		run.Inputs[dataset] = path
	}
	m.logger.InfoContext(ctx, "raw_inputs_available", slog.Int("datasets", len(run.Inputs)))
	return nil
}

// CleaningStage loads, cleans and stages every dataset
type CleaningStage struct {
	m *Manager
}

func (s *CleaningStage) ID() string         { return StageIDCleaning }
func (s *CleaningStage) Name() string       { return "Data Cleaning" }
func (s *CleaningStage) RunState() RunState { return StateCleaning }

func (s *CleaningStage) Execute(ctx context.Context, run *Run) error {
	m := s.m
	cleaner := cleaning.NewCleaner(m.logger, m.cleaningOptions)

	for _, dataset := range config.Datasets {
		if err := ctx.Err(); err != nil {
			return NewCancellationError(StageIDCleaning, err)
		}

		raw, err := table.LoadFile(run.Inputs[dataset])
		if errors.Is(err, table.ErrMissingFile) {
			return NewMissingInputError([]string{dataset})
		}
		if err != nil {
			return NewCleaningError(dataset, err)
		}

		cleaned, stats, err := cleaner.Clean(ctx, dataset, raw)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return NewCancellationError(StageIDCleaning, ctxErr)
			}
			return NewCleaningError(dataset, err)
		}
		m.metrics.RecordDataset(ctx, dataset, stats.InitialCount, stats.FinalCount)

		staged := m.paths.GetStagingPath(config.StagedFiles[dataset])
		if err := m.writer.WriteTable(staged, cleaned); err != nil {
			return NewCleaningError(dataset, fmt.Errorf("failed to write staged table: %w", err))
		}
		infrastructure.WithDataset(m.logger, dataset).DebugContext(ctx, "dataset_staged",
			slog.String("path", staged),
			slog.Int("rows", cleaned.Len()))

		run.mu.Lock()
		run.Tables[dataset] = cleaned
		run.Cleaning[dataset] = stats
		run.mu.Unlock()
	}

	reportPath := m.paths.GetLogPath("cleaning_report_" + m.timestamp(run) + ".txt")
	if err := exporter.WriteText(reportPath, cleaning.Report(cleaner.Stats(), m.now())); err != nil {
		m.logger.WarnContext(ctx, "cleaning_report_failed", slog.String("error", err.Error()))
	} else {
		run.addReports(reportPath)
	}
	return nil
}

// ValidationStage evaluates the staged tables and applies the quality gate
type ValidationStage struct {
	m *Manager
}

func (s *ValidationStage) ID() string         { return StageIDValidation }
func (s *ValidationStage) Name() string       { return "Data Validation" }
func (s *ValidationStage) RunState() RunState { return StateValidating }

func (s *ValidationStage) Skip(run *Run) (bool, string) {
	if run.SkipValidation {
		return true, "validation disabled for this run"
	}
	return false, ""
}

func (s *ValidationStage) Execute(ctx context.Context, run *Run) error {
	m := s.m
	res, err := m.validator.ValidateStaging(ctx, m.paths)
	if err != nil {
		return &OperationError{
			Type:    ErrorTypeValidationGate,
			Stage:   StageIDValidation,
			Message: "failed to load staged tables",
			Cause:   err,
		}
	}

	run.mu.Lock()
	run.Validation = res
	run.mu.Unlock()

	for _, suite := range res.Suites {
		m.metrics.RecordExpectations(ctx, suite.Suite, suite.PassedTests, suite.FailedTests)
	}

	textPath, jsonPath, err := res.WriteReports(m.paths.ReportsDir, m.timestamp(run))
	if err != nil {
		m.logger.WarnContext(ctx, "validation_report_failed", slog.String("error", err.Error()))
	} else {
		run.addReports(textPath, jsonPath)
	}

	summary := res.Summary
	threshold := m.cfg.EffectiveGateThreshold()
	passed := summary.PassesGate(threshold)
	m.metrics.RecordGate(ctx, passed)

	if !summary.OverallSuccess {
		m.logger.WarnContext(ctx, "validation_tests_failed",
			slog.Int("passed_tests", summary.PassedTests),
			slog.Int("total_tests", summary.TotalTests),
			slog.Float64("failure_rate", summary.FailureRate()))
	}
	if !passed {
		return NewValidationGateError(summary.FailureRate(), threshold)
	}

	run.mu.Lock()
	run.GatePassed = true
	run.mu.Unlock()
	return nil
}

// PromotionStage moves the cleaned tables, metadata and live copies into place
type PromotionStage struct {
	m *Manager
}

func (s *PromotionStage) ID() string         { return StageIDPromotion }
func (s *PromotionStage) Name() string       { return "Promotion" }
func (s *PromotionStage) RunState() RunState { return StatePromoting }

func (s *PromotionStage) Execute(ctx context.Context, run *Run) error {
	m := s.m

	dirs := []string{m.paths.ProcessedDir}
	if m.cfg.Pipeline.UpdateLiveData {
		dirs = append(dirs, m.paths.DataDir)
	}
	for _, dir := range dirs {
		if err := m.fileValidator.ValidateOutputDirectory(dir); err != nil {
			return NewPromotionError(err)
		}
	}

	var mu sync.Mutex
	checksums := make(map[string]string)
	tableOutput := func(path string, t *table.Table, sum bool) files.Output {
		return files.Output{
			Path: path,
			Write: func(tmp string) error {
				if err := m.writer.WriteTable(tmp, t); err != nil {
					return err
				}
				if !sum {
					return nil
				}
				digest, err := files.Checksum(tmp)
				if err != nil {
					return err
				}
				mu.Lock()
				checksums[filepath.Base(path)] = digest
				mu.Unlock()
				return nil
			},
		}
	}

	var outputs []files.Output
	for _, dataset := range config.Datasets {
		t, ok := run.Tables[dataset]
		if !ok {
			continue
		}
		outputs = append(outputs, tableOutput(m.paths.GetProcessedPath(config.ProcessedFiles[dataset]), t, true))
	}
	if m.cfg.Pipeline.UpdateLiveData {
		for _, dataset := range config.LiveDatasets {
			if t, ok := run.Tables[dataset]; ok {
				outputs = append(outputs, tableOutput(m.paths.GetLivePath(config.ProcessedFiles[dataset]), t, false))
			}
		}
	}

	// metadata is written last so it sees every checksum
	metadataPath := m.paths.GetProcessedPath(config.MetadataFile)
	targets := make([]string, 0, len(outputs)+1)
	for _, out := range outputs {
		targets = append(targets, out.Path)
	}
	targets = append(targets, metadataPath)
	outputs = append(outputs, files.Output{
		Path: metadataPath,
		Write: func(tmp string) error {
			mu.Lock()
			defer mu.Unlock()
			return exporter.WriteJSON(tmp, newMetadata(run, m.cfg.Pipeline.Version, m.now(), checksums, targets))
		},
	})

	promo, err := m.files.Promote(ctx, outputs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return NewCancellationError(StageIDPromotion, ctxErr)
		}
		return NewPromotionError(err)
	}

	run.mu.Lock()
	run.Written = append(run.Written, promo.Written...)
	run.Backups = append(run.Backups, promo.Backups...)
	for k, v := range checksums {
		run.Checksums[k] = v
	}
	run.mu.Unlock()

	if retention := m.cfg.Pipeline.BackupRetention; retention > 0 {
		for _, dir := range []string{m.paths.ProcessedDir, m.paths.DataDir} {
			if _, err := m.files.PruneBackups(dir, retention); err != nil {
				m.logger.WarnContext(ctx, "backup_prune_failed",
					slog.String("directory", dir),
					slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

// ReportStage writes the run report
type ReportStage struct {
	m *Manager
}

func (s *ReportStage) ID() string         { return StageIDReport }
func (s *ReportStage) Name() string       { return "Run Report" }
func (s *ReportStage) RunState() RunState { return StatePromoting }

func (s *ReportStage) Execute(ctx context.Context, run *Run) error {
	m := s.m
	path := m.paths.GetReportPath("pipeline_report_" + m.timestamp(run) + ".txt")
	if err := exporter.WriteText(path, RunReport(run, m.paths.ProjectRoot, m.now())); err != nil {
		m.logger.WarnContext(ctx, "run_report_failed", slog.String("error", err.Error()))
		return nil
	}
	run.addReports(path)
	return nil
}
