package files

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"retailflow/internal/config"
)

// BackupMarker separates the original base name from the backup timestamp
const BackupMarker = "_backup_"

// Output is one file produced by a promotion. Write must fully write the
// content to the temporary path it is given.
type Output struct {
	Path  string
	Write func(tmpPath string) error
}

// Promotion lists what an all-or-nothing promotion put in place
type Promotion struct {
	Written []string
	Backups []string
}

// Manager provides file management operations for promoted outputs
type Manager struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger: logger.With(slog.String("component", "file_manager")),
		now:    time.Now,
	}
}

// BackupName returns <name>_backup_<ts>.<ext> for path
func BackupName(path string, at time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + BackupMarker + at.Format(config.TimestampLayout) + ext
}

// Backup renames an existing file at path to its timestamped backup name.
// It returns "" when there was nothing to back up.
func (m *Manager) Backup(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	backup := uniquePath(BackupName(path, m.now()))
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	m.logger.Info("Backed up file",
		slog.String("path", path),
		slog.String("backup", backup))
	return backup, nil
}

// uniquePath appends a counter to path until it names no existing file
func uniquePath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

type staged struct {
	out    Output
	tmp    string
	backup string
	moved  bool
}

// Promote writes every output to a temporary file next to its target, then
// backs up any existing target and renames the temporary file into place.
// If any step fails, targets already moved are restored from their backups
// (or removed when there was none) and no temporary file is left behind.
func (m *Manager) Promote(ctx context.Context, outputs []Output) (*Promotion, error) {
	items := make([]*staged, 0, len(outputs))
	cleanup := func() {
		for _, it := range items {
			if it.tmp != "" && !it.moved {
				os.Remove(it.tmp)
			}
		}
	}

	for _, out := range outputs {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, err
		}
		tmp, err := m.writeTemp(out)
		items = append(items, &staged{out: out, tmp: tmp})
		if err != nil {
			cleanup()
			return nil, err
		}
	}

	result := &Promotion{}
	for i, it := range items {
		backup, err := m.Backup(it.out.Path)
		if err == nil {
			it.backup = backup
			err = os.Rename(it.tmp, it.out.Path)
			if err != nil {
				err = fmt.Errorf("failed to move %s into place: %w", it.out.Path, err)
			}
		}
		if err != nil {
			m.rollback(ctx, items[:i+1])
			cleanup()
			return nil, err
		}
		it.moved = true
		result.Written = append(result.Written, it.out.Path)
		if backup != "" {
			result.Backups = append(result.Backups, backup)
		}
	}

	m.logger.InfoContext(ctx, "Promotion completed",
		slog.Int("files_written", len(result.Written)),
		slog.Int("backups", len(result.Backups)))
	return result, nil
}

func (m *Manager) writeTemp(out Output) (string, error) {
	dir := filepath.Dir(out.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(out.Path)+".tmp*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file for %s: %w", out.Path, err)
	}
	tmp := f.Name()
	f.Close()

	if err := out.Write(tmp); err != nil {
		return tmp, fmt.Errorf("failed to write %s: %w", out.Path, err)
	}
	return tmp, nil
}

func (m *Manager) rollback(ctx context.Context, items []*staged) {
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if it.moved {
			if err := os.Remove(it.out.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				m.logger.ErrorContext(ctx, "Rollback failed to remove file",
					slog.String("path", it.out.Path),
					slog.String("error", err.Error()))
			}
			it.moved = false
		}
		if it.backup != "" {
			if err := os.Rename(it.backup, it.out.Path); err != nil {
				m.logger.ErrorContext(ctx, "Rollback failed to restore backup",
					slog.String("path", it.out.Path),
					slog.String("backup", it.backup),
					slog.String("error", err.Error()))
				continue
			}
			it.backup = ""
		}
	}
	m.logger.WarnContext(ctx, "Promotion rolled back", slog.Int("files", len(items)))
}

// Checksum returns the hex encoded BLAKE2b-256 digest of the file at path
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// PruneBackups deletes backups in dir older than olderThan and returns the removed paths
func (m *Manager) PruneBackups(dir string, olderThan time.Duration) ([]string, error) {
	backups, err := NewDiscovery(dir).FindBackups("")
	if err != nil {
		return nil, err
	}

	cutoff := m.now().Add(-olderThan)
	var removed []string
	for _, b := range backups {
		if !b.BackupTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("failed to remove backup %s: %w", b.Path, err)
		}
		removed = append(removed, b.Path)
	}

	if len(removed) > 0 {
		m.logger.Info("Pruned backups",
			slog.String("directory", dir),
			slog.Int("removed", len(removed)))
	}
	return removed, nil
}
