package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".", cfg.Pipeline.ProjectRoot)
	assert.Equal(t, PipelineVersion, cfg.Pipeline.Version)
	assert.Equal(t, 80.0, cfg.Quality.GateThreshold)
	assert.Equal(t, 95.0, cfg.Quality.StrictThreshold)
	assert.Equal(t, 1.5, cfg.Quality.IQRMultiplier)
	assert.Equal(t, 41.0, cfg.Quality.Bounds.MinLat)
	assert.Equal(t, 10.0, cfg.Quality.Bounds.MaxLon)
	assert.Equal(t, 30*24*time.Hour, cfg.Pipeline.BackupRetention)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	root := t.TempDir()
	t.Setenv("RETAIL_PIPELINE_PROJECT_ROOT", root)
	t.Setenv("RETAIL_PIPELINE_STRICT_GATE", "true")
	t.Setenv("RETAIL_QUALITY_GATE_THRESHOLD", "70")
	t.Setenv("RETAIL_LOGGING_LEVEL", "debug")
	t.Setenv("RETAIL_SERVER_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Pipeline.ProjectRoot)
	assert.True(t, cfg.Pipeline.StrictGate)
	assert.Equal(t, 70.0, cfg.Quality.GateThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, filepath.Join(root, "pipeline", "logs", DefaultLogFileName), cfg.Logging.FilePath)
	assert.Equal(t, filepath.Join(root, "pipeline", "logs", HistoryDBFileName), cfg.History.DBPath)
}

func TestLoadFromFile(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := "pipeline:\n  project_root: " + root + "\n  skip_validation: true\nquality:\n  gate_threshold: 90\nserver:\n  port: 7070\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Pipeline.ProjectRoot)
	assert.True(t, cfg.Pipeline.SkipValidation)
	assert.Equal(t, 90.0, cfg.Quality.GateThreshold)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "gate threshold above 100",
			mutate:  func(c *Config) { c.Quality.GateThreshold = 120 },
			wantErr: true,
		},
		{
			name:    "inverted latitude bounds",
			mutate:  func(c *Config) { c.Quality.Bounds.MaxLat = 40 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "unknown trace exporter",
			mutate:  func(c *Config) { c.Telemetry.TraceExporter = "jaeger" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ForRoot(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEffectiveGateThreshold(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 80.0, cfg.EffectiveGateThreshold())

	cfg.Pipeline.StrictGate = true
	assert.Equal(t, 95.0, cfg.EffectiveGateThreshold())
}

func TestPathsLayout(t *testing.T) {
	root := t.TempDir()
	paths := NewPaths(root)

	assert.Equal(t, filepath.Join(root, "data", "raw"), paths.RawDir)
	assert.Equal(t, filepath.Join(root, "data", "staging"), paths.StagingDir)
	assert.Equal(t, filepath.Join(root, "data", "processed"), paths.ProcessedDir)
	assert.Equal(t, filepath.Join(root, "pipeline", "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(root, "data", ProcessedStoresFile), paths.GetLivePath(ProcessedStoresFile))
	assert.Equal(t, filepath.Join(root, "data", "raw", RawTransactionsFile), paths.RawInputs()[DatasetTransactions])

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{paths.RawDir, paths.StagingDir, paths.ProcessedDir, paths.LogsDir, paths.ReportsDir} {
		assert.DirExists(t, dir)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "absent.csv")))
}
