package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"retailflow/internal/config"
)

// rawExtensions are the accepted raw input formats, in lookup order
var rawExtensions = []string{".csv", ".xlsx"}

// FileValidator checks the files a run reads and the directories it writes
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks that path is an existing, readable regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists, creating it if needed, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return nil
}

// ResolveInput returns the raw input file of dataset. The CSV file is
// preferred; an .xlsx file with the same base name is accepted instead.
func (v *FileValidator) ResolveInput(paths *config.Paths, dataset string) (string, error) {
	name, ok := config.RawFiles[dataset]
	if !ok {
		return "", fmt.Errorf("unknown dataset %q", dataset)
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))

	var lastErr error
	for _, ext := range rawExtensions {
		path := paths.GetRawPath(base + ext)
		if lastErr = v.ValidateFile(path); lastErr == nil {
			return path, nil
		}
	}
	return "", lastErr
}

// MissingInputs returns the datasets whose raw input cannot be resolved, in processing order
func (v *FileValidator) MissingInputs(paths *config.Paths) []string {
	var missing []string
	for _, dataset := range config.Datasets {
		if _, err := v.ResolveInput(paths, dataset); err != nil {
			v.logger.Warn("Raw input missing",
				slog.String("dataset", dataset),
				slog.String("error", err.Error()))
			missing = append(missing, dataset)
		}
	}
	return missing
}
