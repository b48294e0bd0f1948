package ytdlp_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipfetch/internal/ytdlp"
)

func TestCleanLeftovers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	client, err := ytdlp.New("yt-dlp", dir, 0,
		ytdlp.WithExecutor(&stubExecutor{}),
		ytdlp.WithClock(func() time.Time { return time.Now().Add(48 * time.Hour) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, ".subs_123"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"video_a.mp4.part", "video_b.f137.mp4.part-Frag3", "video_c.mp4", ".clipfetch.lock"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	result := client.CleanLeftovers(24 * time.Hour)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 3 {
		t.Fatalf("expected scratch dir and two partial files removed, got %v", result.Removed)
	}
	for _, kept := range []string{"video_c.mp4", ".clipfetch.lock"} {
		if _, err := os.Stat(filepath.Join(dir, kept)); err != nil {
			t.Fatalf("expected %s kept: %v", kept, err)
		}
	}
}

func TestCleanLeftoversKeepsRecent(t *testing.T) {
	client, dir := newClient(t, &stubExecutor{}, 0)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "video_a.mp4.part"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// The fixed clock predates the file, so nothing is old enough.
	if result := client.CleanLeftovers(time.Hour); len(result.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", result.Removed)
	}
}
