package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"retailflow/internal/config"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	// BackupTime is parsed from a backup file name, ModTime otherwise
	BackupTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindFilesByPattern finds files matching a glob pattern, oldest first
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	searchPattern := filepath.Join(d.resolve(dir), pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:       match,
			Name:       filepath.Base(match),
			Size:       info.Size(),
			ModTime:    info.ModTime(),
			BackupTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// FindBackups lists backup files in dir, oldest backup first
func (d *Discovery) FindBackups(dir string) ([]FileInfo, error) {
	files, err := d.FindFilesByPattern(dir, "*"+BackupMarker+"*")
	if err != nil {
		return nil, err
	}
	for i := range files {
		if ts, ok := ParseBackupTime(files[i].Name); ok {
			files[i].BackupTime = ts
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].BackupTime.Before(files[j].BackupTime)
	})
	return files, nil
}

// ParseBackupTime extracts the timestamp of a <name>_backup_<ts>.<ext> file name
func ParseBackupTime(name string) (time.Time, bool) {
	idx := strings.LastIndex(name, BackupMarker)
	if idx < 0 {
		return time.Time{}, false
	}
	rest := strings.TrimSuffix(name[idx+len(BackupMarker):], filepath.Ext(name))
	if len(rest) < len(config.TimestampLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(config.TimestampLayout, rest[:len(config.TimestampLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
