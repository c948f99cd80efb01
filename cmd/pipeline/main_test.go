package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailflow/internal/infrastructure"
	"retailflow/internal/operations"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("RETAIL_PIPELINE_PROJECT_ROOT", root)
	t.Setenv("RETAIL_LOGGING_OUTPUT", "console")
	t.Setenv("RETAIL_LOGGING_LEVEL", "error")
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	return root
}

func TestRunGeneratesAndSucceeds(t *testing.T) {
	root := setupEnv(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--project-root", root, "--json"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	var res operations.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, operations.StateDone, res.FinalState)
}

func TestRunBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"--no-such-flag"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "no-such-flag")
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, operations.Result{
		RunID:         "run-1",
		FinalState:    operations.StateFailed,
		ErrorType:     operations.ErrorTypeMissingInput,
		Error:         "could not generate or find raw data files: [magasins]",
		ExecutionTime: 0.25,
	}, false)

	assert.Contains(t, buf.String(), "Pipeline failed in state failed")
	assert.Contains(t, buf.String(), "Error [missing_input]")
}
