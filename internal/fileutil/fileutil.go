// Package fileutil holds directory helpers shared by the yt-dlp client and the CLI.
package fileutil

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"clipfetch/internal/logging"
)

// EnsureDir creates dir and any parents.
func EnsureDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("ensure directory: empty path")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure directory %q: %w", dir, err)
	}
	return nil
}

// SafeCleanup removes dir recursively. A missing directory is fine. Failures
// are logged and swallowed; callers treat cleanup as best effort.
func SafeCleanup(dir string, logger *slog.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" || trimmed == "/" {
		logger.Warn("refusing to clean up directory", logging.FieldPath, dir)
		return
	}
	if err := os.RemoveAll(trimmed); err != nil {
		logger.Error("error cleaning up directory", logging.FieldPath, trimmed, logging.Error(err))
		return
	}
	logger.Debug("directory removed", logging.FieldPath, trimmed)
}
