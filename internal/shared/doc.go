// Package shared holds helpers used by more than one package that belong to
// no single pipeline stage.
//
// testutil captures slog output so tests can assert on the structured events
// the pipeline emits:
//
//	logger, logs := testutil.NewTestLogger(t)
//	m := operations.NewManager(cfg, logger)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "run_history_record_failed")
package shared
