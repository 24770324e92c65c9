package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hkpulse/internal/config"
)

// Manager provides file management operations for the data directory
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger.With(slog.String("component", "file_manager"))}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// BackupName returns the backup path for path at time now:
// <dir>/<name>_<YYYYMMDD_HHMM><ext>
func BackupName(path string, now time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", base, now.Format(config.BackupTimestampLayout), ext)
}

// BackupExisting renames an existing file to its timestamped backup name
// and returns the new path. A missing file is not an error and returns "".
// Backups are never overwritten: a name collision within the same minute
// gets a numeric suffix.
func (m *Manager) BackupExisting(path string, now time.Time) (string, error) {
	if !m.FileExists(path) {
		return "", nil
	}

	backup := BackupName(path, now)
	if m.FileExists(backup) {
		ext := filepath.Ext(backup)
		stem := strings.TrimSuffix(backup, ext)
		for i := 1; ; i++ {
			candidate := stem + "_" + strconv.Itoa(i) + ext
			if !m.FileExists(candidate) {
				backup = candidate
				break
			}
		}
	}

	if err := m.MoveFile(path, backup); err != nil {
		return "", fmt.Errorf("backup %s: %w", filepath.Base(path), err)
	}

	m.logger.Info("Backed up existing file",
		slog.String("path", path),
		slog.String("backup", backup))
	return backup, nil
}

// CopyFile copies a file from source to destination
func (m *Manager) CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	return dstFile.Sync()
}

// MoveFile moves a file from source to destination
func (m *Manager) MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	// Try rename first (atomic if on same filesystem)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Fall back to copy and delete
	if err := m.CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
