package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"clipfetch/internal/config"
)

// isolate points HOME and the working directory at temp dirs so no real config
// or .env file leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "clipfetch", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if want := filepath.Join(home, "Downloads", "clipfetch"); cfg.Paths.DownloadsDir != want {
		t.Fatalf("downloads dir = %q, want %q", cfg.Paths.DownloadsDir, want)
	}
	if want := filepath.Join(home, ".local", "share", "clipfetch"); cfg.Paths.StateDir != want {
		t.Fatalf("state dir = %q, want %q", cfg.Paths.StateDir, want)
	}
	if cfg.HistoryPath() != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
	if cfg.YTDLP.Binary != "yt-dlp" || cfg.YTDLP.DefaultResolution != "720p" {
		t.Fatalf("unexpected ytdlp defaults: %+v", cfg.YTDLP)
	}
	if cfg.YTDLPTimeout() != 0 {
		t.Fatalf("expected no timeout by default, got %s", cfg.YTDLPTimeout())
	}
	if !cfg.History.Enabled || cfg.History.RetentionDays != 90 {
		t.Fatalf("unexpected history defaults: %+v", cfg.History)
	}
	if cfg.HistoryRetention() != 90*24*time.Hour {
		t.Fatalf("unexpected retention %s", cfg.HistoryRetention())
	}
	if cfg.Archive.Enabled {
		t.Fatal("expected archive disabled by default")
	}
	if cfg.MinFreeBytes() != 1<<30 {
		t.Fatalf("unexpected min free bytes %d", cfg.MinFreeBytes())
	}
}

func TestLoadProjectFile(t *testing.T) {
	isolate(t)
	content := `
[paths]
downloads_dir = "media"

[ytdlp]
default_resolution = "1080P"
timeout_seconds = 30
`
	if err := os.WriteFile("clipfetch.toml", []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || filepath.Base(resolved) != "clipfetch.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if !filepath.IsAbs(cfg.Paths.DownloadsDir) || filepath.Base(cfg.Paths.DownloadsDir) != "media" {
		t.Fatalf("expected absolute downloads dir, got %q", cfg.Paths.DownloadsDir)
	}
	if cfg.YTDLP.DefaultResolution != "1080p" {
		t.Fatalf("expected lowercased resolution, got %q", cfg.YTDLP.DefaultResolution)
	}
	if cfg.YTDLPTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.YTDLPTimeout())
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[ytdlp]\nbinnary = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to fail parsing")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CLIPFETCH_LOG_LEVEL", "debug")
	t.Setenv("CLIPFETCH_YTDLP_BINARY", "/opt/yt-dlp")
	t.Setenv("CLIPFETCH_HISTORY_ENABLED", "false")
	t.Setenv("CLIPFETCH_TIMEOUT_SECONDS", "12")

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected explicit config to exist")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected env level override, got %q", cfg.Logging.Level)
	}
	if cfg.YTDLP.Binary != "/opt/yt-dlp" {
		t.Fatalf("expected env binary override, got %q", cfg.YTDLP.Binary)
	}
	if cfg.History.Enabled {
		t.Fatal("expected history disabled via env")
	}
	if cfg.YTDLP.TimeoutSeconds != 12 {
		t.Fatalf("expected timeout 12, got %d", cfg.YTDLP.TimeoutSeconds)
	}
}

func TestInvalidEnvValueFails(t *testing.T) {
	isolate(t)
	t.Setenv("CLIPFETCH_TIMEOUT_SECONDS", "soon")
	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected invalid integer env to fail")
	}
}

func TestDotEnvFileIsLoaded(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(".env", []byte("CLIPFETCH_AUDIO_FORMAT=opus\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CLIPFETCH_AUDIO_FORMAT") })

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.YTDLP.AudioFormat != "opus" {
		t.Fatalf("expected .env audio format, got %q", cfg.YTDLP.AudioFormat)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"resolution", func(c *config.Config) { c.YTDLP.DefaultResolution = "4k" }, "default_resolution"},
		{"timeout", func(c *config.Config) { c.YTDLP.TimeoutSeconds = -1 }, "timeout_seconds"},
		{"audio", func(c *config.Config) { c.YTDLP.AudioFormat = "midi" }, "audio_format"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"retention", func(c *config.Config) { c.History.RetentionDays = -5 }, "retention_days"},
		{"archive bucket", func(c *config.Config) { c.Archive.Enabled = true }, "archive.bucket"},
		{"archive keys", func(c *config.Config) {
			c.Archive.Enabled = true
			c.Archive.Bucket = "b"
			c.Archive.AccessKeyID = "id"
		}, "secret_access_key"},
		{"archive endpoint", func(c *config.Config) {
			c.Archive.Enabled = true
			c.Archive.Bucket = "b"
			c.Archive.EndpointURL = "minio:9000"
		}, "endpoint_url"},
		{"ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "ntfy.sh/topic" }, "ntfy_topic"},
		{"ntfy timeout", func(c *config.Config) { c.Notifications.RequestTimeoutSeconds = -1 }, "request_timeout_seconds"},
		{"free space", func(c *config.Config) { c.Preflight.MinFreeGiB = -1 }, "min_free_gib"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

func TestEncodeMasksSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Archive.SecretAccessKey = "super-secret"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(data), "super-secret") {
		t.Fatal("secret leaked into encoded config")
	}
	if cfg.Archive.SecretAccessKey != "super-secret" {
		t.Fatal("Encode must not mutate the receiver")
	}
}
