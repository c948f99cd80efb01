package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailflow/internal/config"
	"retailflow/internal/infrastructure"
	"retailflow/internal/operations"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.ForRoot(t.TempDir())
	cfg.Logging.Output = "console"
	cfg.Logging.Level = "error"
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	return cfg
}

func TestNewApplication(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := NewApplication(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	assert.NotNil(t, a.Manager)
	assert.NotNil(t, a.History)
	assert.FileExists(t, cfg.History.DBPath)
	assert.Equal(t, ":8080", a.Server.Addr)
	assert.DirExists(t, cfg.Paths().RawDir)
}

func TestNewApplicationWithoutHistory(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enabled = false
	ctx := context.Background()

	a, err := NewApplication(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	assert.Nil(t, a.History)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pipeline/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRunOnceRegeneratesAndRecords(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := NewApplication(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	res := a.RunOnce(ctx, operations.RunOptions{RunID: "run-app"})
	require.True(t, res.Success, res.Error)
	assert.FileExists(t, cfg.Paths().GetProcessedPath(config.MetadataFile))

	rec, err := a.History.Get(ctx, "run-app")
	require.NoError(t, err)
	assert.True(t, rec.Success)
	assert.Equal(t, string(operations.StateDone), rec.FinalState)

	resp := httptest.NewRecorder()
	a.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/pipeline/runs/run-app", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestStopWithoutStart(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := NewApplication(ctx, cfg)
	require.NoError(t, err)

	assert.NoError(t, a.Stop(ctx))
	assert.Nil(t, a.History)
	assert.NoError(t, a.Close(ctx))
}
