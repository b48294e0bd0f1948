package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"clipfetch/internal/fileutil"
	"clipfetch/internal/logging"
	"clipfetch/internal/services"
	"clipfetch/internal/textutil"
	"clipfetch/internal/weburl"
)

const (
	lockFileName   = ".clipfetch.lock"
	lockRetryDelay = 200 * time.Millisecond
)

// Kind identifies what a run produced.
type Kind string

const (
	KindVideo      Kind = "video"
	KindAudio      Kind = "audio"
	KindTranscript Kind = "transcript"
)

var (
	videoExtensions = []string{".mp4", ".webm", ".mkv", ".avi"}
	audioExtensions = []string{".mp3", ".m4a", ".opus", ".ogg", ".oga", ".wav", ".flac", ".aac", ".alac"}
	partialSuffixes = []string{".part", ".ytdl", ".temp"}
)

// Download describes a file yt-dlp wrote.
type Download struct {
	Kind      Kind
	URL       string
	Path      string
	FileName  string
	Dir       string
	SizeBytes int64
	// Fallback is set when the file was found by recency rather than by the
	// per-run filename marker.
	Fallback bool
	// Output is yt-dlp's combined stdout and stderr.
	Output string
}

// SizeMB rounds the file size to whole mebibytes.
func (d *Download) SizeMB() int64 {
	return int64(math.Round(float64(d.SizeBytes) / (1024 * 1024)))
}

// Summary renders a one-line human description of the download.
func (d *Download) Summary() string {
	label := "Video"
	if d.Kind == KindAudio {
		label = "Audio"
	}
	if d.Fallback {
		return fmt.Sprintf("%s downloaded as \"%s\" to %s", label, d.FileName, d.Dir)
	}
	return fmt.Sprintf("%s successfully downloaded as \"%s\" (%dMB) to %s", label, d.FileName, d.SizeMB(), d.Dir)
}

// DownloadVideo fetches url at the requested resolution into the downloads
// directory.
func (c *Client) DownloadVideo(ctx context.Context, url string, res Resolution) (*Download, error) {
	if err := weburl.Validate(url); err != nil {
		return nil, err
	}
	if res == "" {
		res = DefaultResolution
	}
	format, err := res.FormatSelector()
	if err != nil {
		return nil, err
	}

	marker := "video_" + textutil.FormattedTimestamp(c.now())
	args := []string{
		"--verbose",
		"-f", format,
		"-o", filepath.Join(c.downloadsDir, marker+".%(ext)s"),
		"--no-mtime",
		url,
	}
	return c.download(ctx, KindVideo, url, marker, args, videoExtensions)
}

// DownloadAudio extracts the audio track of url, converted to audioFormat
// (for example mp3), into the downloads directory.
func (c *Client) DownloadAudio(ctx context.Context, url, audioFormat string) (*Download, error) {
	if err := weburl.Validate(url); err != nil {
		return nil, err
	}
	audioFormat = strings.ToLower(strings.TrimSpace(audioFormat))
	if audioFormat == "" {
		audioFormat = "mp3"
	}
	if strings.ContainsAny(audioFormat, " /\\") {
		return nil, services.Wrap(services.ErrValidation, component, "download audio",
			fmt.Sprintf("invalid audio format %q", audioFormat), nil)
	}

	marker := "audio_" + textutil.FormattedTimestamp(c.now())
	args := []string{
		"--verbose",
		"-x",
		"--audio-format", audioFormat,
		"-o", filepath.Join(c.downloadsDir, marker+".%(ext)s"),
		"--no-mtime",
		url,
	}
	return c.download(ctx, KindAudio, url, marker, args, audioExtensions)
}

func (c *Client) download(ctx context.Context, kind Kind, url, marker string, args []string, fallbackExts []string) (*Download, error) {
	operation := "download " + string(kind)
	if err := fileutil.EnsureDir(c.downloadsDir); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, operation, "prepare downloads directory", err)
	}

	ctx = services.WithURL(ctx, url)
	unlock, err := c.lockDownloads(ctx, operation)
	if err != nil {
		return nil, err
	}

	logger := logging.WithContext(ctx, c.logger)
	logger.Info("downloading", "kind", string(kind), logging.FieldPath, c.downloadsDir)

	output, finished, err := c.runTracked(ctx, operation, args)
	if err != nil {
		c.unlockWhenFinished(finished, unlock)
		return nil, err
	}
	defer unlock()

	path, fallback, err := locateOutput(c.downloadsDir, marker, fallbackExts)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, component, operation, "", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, component, operation, "stat downloaded file", err)
	}
	if fallback {
		logger.Warn("output marker not found; using most recent file", logging.FieldPath, path)
	}

	result := &Download{
		Kind:      kind,
		URL:       url,
		Path:      path,
		FileName:  filepath.Base(path),
		Dir:       c.downloadsDir,
		SizeBytes: info.Size(),
		Fallback:  fallback,
		Output:    output,
	}
	logger.Info("download complete", logging.FieldPath, path, "size_bytes", result.SizeBytes)
	return result, nil
}

// lockDownloads takes the advisory lock on the downloads directory, waiting
// for other clipfetch processes to finish.
func (c *Client) lockDownloads(ctx context.Context, operation string) (func(), error) {
	lock := flock.New(filepath.Join(c.downloadsDir, lockFileName))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, operation, "acquire downloads lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrTransient, component, operation, "downloads directory is locked by another process", nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn("failed to release downloads lock", logging.Error(err))
		}
	}, nil
}

// unlockWhenFinished releases the downloads lock once an abandoned yt-dlp has
// exited, so no other run scans the directory while it is still writing.
func (c *Client) unlockWhenFinished(finished <-chan struct{}, unlock func()) {
	select {
	case <-finished:
		unlock()
	default:
		c.logger.Debug("holding downloads lock until abandoned yt-dlp exits", logging.FieldPath, c.downloadsDir)
		go func() {
			<-finished
			unlock()
		}()
	}
}

type fileEntry struct {
	name    string
	modTime time.Time
}

// locateOutput finds the file a run produced. Names containing marker win;
// otherwise the most recently modified file with a fallback extension is
// returned with fallback set.
func locateOutput(dir, marker string, fallbackExts []string) (string, bool, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return "", false, fmt.Errorf("read downloads directory: %w", err)
	}

	var names []string
	var marked []string
	var candidates []fileEntry
	for _, item := range items {
		name := item.Name()
		if item.IsDir() || name == lockFileName {
			continue
		}
		names = append(names, name)
		if isPartial(name) {
			continue
		}
		if strings.Contains(name, marker) {
			marked = append(marked, name)
			continue
		}
		if !hasExtension(name, fallbackExts) {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, fileEntry{name: name, modTime: info.ModTime()})
	}

	if len(marked) > 0 {
		sort.Strings(marked)
		return filepath.Join(dir, marked[0]), false, nil
	}
	if newest := newestEntry(candidates); newest != nil {
		return filepath.Join(dir, newest.name), true, nil
	}
	listing := strings.Join(names, ", ")
	if listing == "" {
		listing = "(empty)"
	}
	return "", false, errors.New("no output file found after download. Files in directory: " + listing)
}

func newestEntry(entries []fileEntry) *fileEntry {
	if len(entries) == 0 {
		return nil
	}
	newest := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].modTime.After(entries[newest].modTime) ||
			(entries[i].modTime.Equal(entries[newest].modTime) && entries[i].name > entries[newest].name) {
			newest = i
		}
	}
	return &entries[newest]
}

func isPartial(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range exts {
		if ext == candidate {
			return true
		}
	}
	return false
}

// IsLeftover reports whether entry is debris from an interrupted run: a
// subtitle scratch directory or a partial download.
func IsLeftover(entry os.DirEntry) bool {
	if entry.IsDir() {
		return strings.HasPrefix(entry.Name(), scratchPrefix)
	}
	return isPartial(entry.Name()) || strings.Contains(strings.ToLower(entry.Name()), ".part-frag")
}

// CleanLeftovers removes leftovers in the downloads directory older than maxAge.
func (c *Client) CleanLeftovers(maxAge time.Duration) fileutil.StaleResult {
	return fileutil.CleanStale(c.downloadsDir, c.now().Add(-maxAge), IsLeftover, c.logger)
}
