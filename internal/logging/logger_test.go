package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipfetch/internal/config"
	"clipfetch/internal/logging"
	"clipfetch/internal/services"
)

func newBufferLogger(t *testing.T, format, level string) (*bytes.Buffer, *slog.Logger) {
	t.Helper()
	var buf bytes.Buffer
	noColor := false
	logger, err := logging.New(logging.Options{Format: format, Level: level, Writer: &buf, Color: &noColor})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &buf, logger
}

func TestConsoleFormatIncludesComponentAndFields(t *testing.T) {
	buf, h := newBufferLogger(t, "console", "info")
	logger := logging.NewComponentLogger(h, "ytdlp")
	logger.Info("download complete", logging.FieldPath, "/tmp/a b.mp4", "size", 42)

	line := buf.String()
	if !strings.Contains(line, " INFO ytdlp: download complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, `path="/tmp/a b.mp4"`) {
		t.Fatalf("expected quoted path, got %q", line)
	}
	if !strings.Contains(line, "size=42") {
		t.Fatalf("expected size field, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("did not expect ANSI escapes with color disabled: %q", line)
	}
}

func TestConsoleColorWrapsLevel(t *testing.T) {
	var buf bytes.Buffer
	color := true
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf, Color: &color})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Warn("careful")
	if !strings.Contains(buf.String(), "\x1b[33mWARN\x1b[0m") {
		t.Fatalf("expected yellow WARN label, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	buf, h := newBufferLogger(t, "console", "warn")
	h.Info("hidden")
	h.Debug("hidden too")
	h.Error("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info/debug should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("expected error line: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	buf, h := newBufferLogger(t, "json", "debug")
	h.Debug("json check", logging.FieldExitCode, 2)

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if payload["level"] != "debug" {
		t.Fatalf("level = %v", payload["level"])
	}
	if payload["msg"] != "json check" {
		t.Fatalf("msg = %v", payload["msg"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key in %v", payload)
	}
	if payload[logging.FieldExitCode] != float64(2) {
		t.Fatalf("exit_code = %v", payload[logging.FieldExitCode])
	}
}

func TestNewRejectsUnknownFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &buf}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := logging.New(logging.Options{Level: "loud", Writer: &buf}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	buf, h := newBufferLogger(t, "console", "info")
	ctx := services.WithInvocationID(context.Background(), "inv-1")
	ctx = services.WithURL(ctx, "https://example.com/v")
	ctx = services.WithRequestID(ctx, "req-9")

	logging.WithContext(ctx, h).Info("start")
	out := buf.String()
	for _, want := range []string{"invocation_id=inv-1", "url=https://example.com/v", "correlation_id=req-9"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestWithContextWithoutFieldsReturnsSameLogger(t *testing.T) {
	_, h := newBufferLogger(t, "console", "info")
	if got := logging.WithContext(context.Background(), h); got != h {
		t.Fatal("expected logger to be returned unchanged")
	}
	if logging.WithContext(context.Background(), nil) == nil {
		t.Fatal("expected nop logger for nil input")
	}
}

func TestErrorAttr(t *testing.T) {
	buf, h := newBufferLogger(t, "console", "info")
	h.Error("failed", logging.Error(errors.New("boom now")))
	if !strings.Contains(buf.String(), `error="boom now"`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if attr := logging.Error(nil); attr.Value.String() != "<nil>" {
		t.Fatalf("nil error attr = %v", attr.Value)
	}
}

func TestGroupedAttributesAreFlattened(t *testing.T) {
	buf, h := newBufferLogger(t, "console", "info")
	h.WithGroup("tool").Info("ran", "name", "yt-dlp")
	if !strings.Contains(buf.String(), "tool.name=yt-dlp") {
		t.Fatalf("expected flattened group key, got %q", buf.String())
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("persisted")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "clipfetch.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"persisted"`) {
		t.Fatalf("log file missing record: %q", data)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should never be enabled")
	}
	logger.Error("ignored")
}
