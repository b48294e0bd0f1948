package fileutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipfetch/internal/logging"
)

// StaleResult lists what CleanStale removed and what it could not.
type StaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with the error that stopped its removal.
type CleanupError struct {
	Path string
	Err  error
}

// CleanStale removes the direct children of dir that match and were last
// modified before cutoff. Directories are removed recursively. A missing dir
// yields an empty result.
func CleanStale(dir string, cutoff time.Time, match func(os.DirEntry) bool, logger *slog.Logger) StaleResult {
	if logger == nil {
		logger = logging.NewNop()
	}
	var result StaleResult

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Err: err})
		}
		return result
	}

	for _, entry := range entries {
		if match != nil && !match(entry) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Err: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Err: err})
			logger.Warn("failed to remove stale entry", logging.FieldPath, path, logging.Error(err))
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale entry", logging.FieldPath, path, "age", time.Since(info.ModTime()).Round(time.Second).String())
	}
	return result
}
