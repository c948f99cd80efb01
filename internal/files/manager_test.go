package files

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(now time.Time) *Manager {
	m := NewManager(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	m.now = func() time.Time { return now }
	return m
}

func writeContent(content string) func(string) error {
	return func(tmp string) error {
		return os.WriteFile(tmp, []byte(content), 0644)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBackupName(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 5, 7, 0, time.Local)
	assert.Equal(t, "/data/processed/magasins_performance_backup_20240301_090507.csv",
		BackupName("/data/processed/magasins_performance.csv", at))
	assert.Equal(t, "/data/processed/metadata_backup_20240301_090507.json",
		BackupName("/data/processed/metadata.json", at))
}

func TestBackup(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	m := newTestManager(at)
	dir := t.TempDir()
	target := filepath.Join(dir, "sites.csv")

	backup, err := m.Backup(target)
	require.NoError(t, err)
	assert.Empty(t, backup)

	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))
	backup, err = m.Backup(target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sites_backup_20240301_090000.csv"), backup)
	assert.NoFileExists(t, target)
	assert.Equal(t, "old", readFile(t, backup))

	require.NoError(t, os.WriteFile(target, []byte("newer"), 0644))
	second, err := m.Backup(target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sites_backup_20240301_090000_1.csv"), second)
	assert.Equal(t, "old", readFile(t, backup))
}

func TestPromote(t *testing.T) {
	m := newTestManager(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))
	dir := t.TempDir()
	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "nested", "b.csv")
	require.NoError(t, os.WriteFile(first, []byte("previous"), 0644))

	promo, err := m.Promote(context.Background(), []Output{
		{Path: first, Write: writeContent("fresh a")},
		{Path: second, Write: writeContent("fresh b")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{first, second}, promo.Written)
	require.Len(t, promo.Backups, 1)
	assert.Equal(t, "previous", readFile(t, promo.Backups[0]))
	assert.Equal(t, "fresh a", readFile(t, first))
	assert.Equal(t, "fresh b", readFile(t, second))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestPromoteWriteFailureKeepsPreviousFiles(t *testing.T) {
	m := newTestManager(time.Now())
	dir := t.TempDir()
	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(first, []byte("previous a"), 0644))

	_, err := m.Promote(context.Background(), []Output{
		{Path: first, Write: writeContent("fresh a")},
		{Path: second, Write: func(string) error { return errors.New("disk full") }},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, "previous a", readFile(t, first))
	assert.NoFileExists(t, second)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPromoteRenameFailureRollsBack(t *testing.T) {
	m := newTestManager(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))
	dir := t.TempDir()
	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(first, []byte("previous a"), 0644))

	_, err := m.Promote(context.Background(), []Output{
		{Path: first, Write: writeContent("fresh a")},
		// the temporary file disappears before it can be renamed
		{Path: second, Write: func(tmp string) error { return os.Remove(tmp) }},
	})
	require.Error(t, err)

	assert.Equal(t, "previous a", readFile(t, first))
	assert.NoFileExists(t, second)
	backups, err := NewDiscovery(dir).FindBackups("")
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestPromoteCancelled(t *testing.T) {
	m := newTestManager(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := filepath.Join(t.TempDir(), "a.csv")
	_, err := m.Promote(ctx, []Output{{Path: target, Write: writeContent("x")}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, target)
}

func TestChecksum(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0644))

	sumA, err := Checksum(a)
	require.NoError(t, err)
	assert.Len(t, sumA, 64)

	sumB, err := Checksum(b)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)

	_, err = Checksum(filepath.Join(dir, "absent"))
	assert.Error(t, err)
}

func TestPruneBackups(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.Local)
	m := newTestManager(now)
	dir := t.TempDir()

	old := filepath.Join(dir, "a_backup_20240201_120000.csv")
	recent := filepath.Join(dir, "a_backup_20240330_120000.csv")
	current := filepath.Join(dir, "a.csv")
	for _, p := range []string{old, recent, current} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	removed, err := m.PruneBackups(dir, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{old}, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
	assert.FileExists(t, current)
}
