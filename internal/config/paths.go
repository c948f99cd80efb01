package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every directory and well-known file used by a pipeline run.
// All of them derive from the project root handed to NewPaths.
//
//	<root>/
//	  ├── data/               (live tables read by the dashboard)
//	  │   ├── raw/            (raw inputs)
//	  │   ├── staging/        (cleaned tables)
//	  │   └── processed/      (promoted tables + metadata.json)
//	  └── pipeline/
//	      ├── logs/           (logs, cleaning reports, history.db)
//	      └── reports/        (validation and run reports)
type Paths struct {
	ProjectRoot  string
	DataDir      string
	RawDir       string
	StagingDir   string
	ProcessedDir string
	LogsDir      string
	ReportsDir   string
	HistoryDB    string
}

// NewPaths returns the layout rooted at root
func NewPaths(root string) *Paths {
	dataDir := filepath.Join(root, "data")
	logsDir := filepath.Join(root, "pipeline", "logs")
	return &Paths{
		ProjectRoot:  root,
		DataDir:      dataDir,
		RawDir:       filepath.Join(dataDir, "raw"),
		StagingDir:   filepath.Join(dataDir, "staging"),
		ProcessedDir: filepath.Join(dataDir, "processed"),
		LogsDir:      logsDir,
		ReportsDir:   filepath.Join(root, "pipeline", "reports"),
		HistoryDB:    filepath.Join(logsDir, HistoryDBFileName),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDir,
		p.StagingDir,
		p.ProcessedDir,
		p.LogsDir,
		p.ReportsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetRawPath returns the path of a raw input file
func (p *Paths) GetRawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// GetStagingPath returns the path of a staged file
func (p *Paths) GetStagingPath(filename string) string {
	return filepath.Join(p.StagingDir, filename)
}

// GetProcessedPath returns the path of a processed file
func (p *Paths) GetProcessedPath(filename string) string {
	return filepath.Join(p.ProcessedDir, filename)
}

// GetLivePath returns the path of a live data file
func (p *Paths) GetLivePath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetLogPath returns the path of a file in the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetReportPath returns the path of a file in the reports directory
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// RawInputs returns dataset identity to raw file path for every dataset
func (p *Paths) RawInputs() map[string]string {
	inputs := make(map[string]string, len(RawFiles))
	for dataset, name := range RawFiles {
		inputs[dataset] = p.GetRawPath(name)
	}
	return inputs
}

// LogPathResolution logs the resolved layout at debug level
func (p *Paths) LogPathResolution() {
	slog.Debug("Resolved pipeline paths",
		slog.String("project_root", p.ProjectRoot),
		slog.String("raw_dir", p.RawDir),
		slog.String("staging_dir", p.StagingDir),
		slog.String("processed_dir", p.ProcessedDir),
		slog.String("reports_dir", p.ReportsDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
