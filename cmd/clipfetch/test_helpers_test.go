package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipfetch/internal/config"
	"clipfetch/internal/testsupport"
)

// stubYTDLP imitates the parts of yt-dlp the CLI drives: --version,
// --dump-json, subtitle downloads, and media downloads into the -o template.
// URLs containing "fail" exit 1 the way yt-dlp does for unsupported sites.
const stubYTDLP = `case "$*" in *--version*) echo 2024.08.06; exit 0;; esac
url=""; out=""; prev=""; ext=mp4; mode=video
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then out="$arg"; fi
  case "$arg" in
    -x) ext=mp3;;
    --write-subs) mode=subs;;
    --dump-json) mode=json;;
  esac
  prev="$arg"; url="$arg"
done
case "$url" in *fail*) echo "ERROR: Unsupported URL: $url" >&2; exit 1;; esac
case "$mode" in
  json) printf '{"id":"abc123","title":"Stub Video","uploader":"Tester","duration":42,"webpage_url":"%s"}\n' "$url";;
  subs) f=$(printf '%s' "$out" | sed 's/%(ext)s/en.vtt/'); printf 'WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhello world\n' > "$f";;
  *) f=$(printf '%s' "$out" | sed "s/%(ext)s/$ext/"); printf 'data' > "$f"; echo "[download] Destination: $f";;
esac
exit 0
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, mutate ...func(*config.Config)) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Chdir(base)

	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("yt-dlp", stubYTDLP))
	for _, fn := range mutate {
		fn(cfg)
	}
	configPath := filepath.Join(base, "clipfetch-test.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if env != nil {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
