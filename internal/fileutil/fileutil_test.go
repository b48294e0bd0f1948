package fileutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeCleanupRemovesTree(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scratch")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "a.vtt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	SafeCleanup(dir, nil)

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected directory removed, stat err = %v", err)
	}
}

func TestSafeCleanupMissingDirectory(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	SafeCleanup(filepath.Join(t.TempDir(), "does-not-exist"), logger)
	if buf.Len() != 0 {
		t.Fatalf("expected no warnings for missing dir, got %q", buf.String())
	}
}

func TestSafeCleanupRefusesRoot(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	SafeCleanup("/", logger)
	SafeCleanup("  ", logger)
	if strings.Count(buf.String(), "refusing") != 2 {
		t.Fatalf("expected two refusals, got %q", buf.String())
	}
}

func TestSafeCleanupLogsFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	parent := t.TempDir()
	dir := filepath.Join(parent, "locked")
	if err := os.MkdirAll(filepath.Join(dir, "inner"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	SafeCleanup(dir, logger)
	if !strings.Contains(buf.String(), "error cleaning up directory") {
		t.Fatalf("expected failure to be logged, got %q", buf.String())
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory, stat err = %v", err)
	}
	if err := EnsureDir(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
