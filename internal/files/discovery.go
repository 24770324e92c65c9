package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"hkpulse/internal/config"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	// Taken is the backup timestamp parsed from the name; zero for non-backups
	Taken time.Time
}

// FindBackups lists the timestamped backups of path, oldest first
func FindBackups(path string) ([]FileInfo, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	prefix := strings.TrimSuffix(filepath.Base(path), ext) + "_"

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var backups []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || filepath.Ext(name) != ext {
			continue
		}

		taken, ok := parseBackupStamp(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext))
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Taken:   taken,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Taken.Equal(backups[j].Taken) {
			return backups[i].Name < backups[j].Name
		}
		return backups[i].Taken.Before(backups[j].Taken)
	})

	return backups, nil
}

// GetLatestFile returns the most recent backup from a sorted list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}
	return files[len(files)-1], true
}

// parseBackupStamp accepts "YYYYMMDD_HHMM" optionally followed by "_<n>"
func parseBackupStamp(s string) (time.Time, bool) {
	layout := config.BackupTimestampLayout
	if len(s) < len(layout) {
		return time.Time{}, false
	}
	taken, err := time.ParseInLocation(layout, s[:len(layout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	rest := s[len(layout):]
	if rest != "" {
		if rest[0] != '_' || len(rest) == 1 {
			return time.Time{}, false
		}
		for _, r := range rest[1:] {
			if r < '0' || r > '9' {
				return time.Time{}, false
			}
		}
	}
	return taken, true
}
