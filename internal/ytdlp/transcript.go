package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"clipfetch/internal/fileutil"
	"clipfetch/internal/logging"
	"clipfetch/internal/services"
	"clipfetch/internal/textutil"
	"clipfetch/internal/weburl"
)

const (
	defaultSubtitleLanguage = "en"
	scratchPrefix           = ".subs_"
)

var subtitleExtensions = []string{".vtt", ".srt"}

// Transcript is subtitle text flattened into prose.
type Transcript struct {
	URL      string
	Language string
	// SubtitleFile is the name of the subtitle file the text came from.
	SubtitleFile string
	Text         string
	Output       string
}

// Transcript downloads manual or automatic subtitles for url in lang and
// returns them as plain text. Subtitle files are written to a scratch
// directory that is removed afterwards.
func (c *Client) Transcript(ctx context.Context, url, lang string) (*Transcript, error) {
	const operation = "transcript"
	if err := weburl.Validate(url); err != nil {
		return nil, err
	}
	lang, err := normalizeLanguage(lang)
	if err != nil {
		return nil, err
	}
	if err := fileutil.EnsureDir(c.downloadsDir); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, operation, "prepare downloads directory", err)
	}

	ctx = services.WithURL(ctx, url)
	logger := logging.WithContext(ctx, c.logger)

	scratch, err := os.MkdirTemp(c.downloadsDir, scratchPrefix+"*")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, operation, "create scratch directory", err)
	}
	defer fileutil.SafeCleanup(scratch, logger)

	marker := "subs_" + textutil.FormattedTimestamp(c.now())
	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", lang,
		"--sub-format", "vtt/srt/best",
		"-o", filepath.Join(scratch, marker+".%(ext)s"),
		url,
	}
	output, err := c.run(ctx, operation, args)
	if err != nil {
		return nil, err
	}

	file, err := findSubtitle(scratch)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, component, operation,
			fmt.Sprintf("no %s subtitles available", lang), err)
	}
	data, err := os.ReadFile(filepath.Join(scratch, file))
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, component, operation, "read subtitle file", err)
	}

	text := textutil.CleanSubtitleToTranscript(string(data))
	if text == "" {
		return nil, services.Wrap(services.ErrNotFound, component, operation, "subtitle file contained no text", nil)
	}
	logger.Info("transcript extracted", "subtitle_file", file, "chars", len(text))
	return &Transcript{
		URL:          url,
		Language:     subtitleLanguage(file, marker, lang),
		SubtitleFile: file,
		Text:         text,
		Output:       output,
	}, nil
}

// normalizeLanguage checks each comma-separated entry of a --sub-langs value.
// Plain entries must be BCP 47 tags; "all" and regex entries such as "en.*"
// are passed through for yt-dlp to interpret.
func normalizeLanguage(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultSubtitleLanguage, nil
	}
	parts := strings.Split(value, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		parts[i] = part
		if part == "all" || strings.ContainsAny(part, ".*+?[]()|^$") {
			continue
		}
		if _, err := language.Parse(part); err != nil {
			return "", services.Wrap(services.ErrValidation, component, "transcript",
				fmt.Sprintf("invalid subtitle language %q", part), err)
		}
	}
	return strings.Join(parts, ","), nil
}

func findSubtitle(dir string) (string, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var found []string
	for _, item := range items {
		if item.IsDir() || !hasExtension(item.Name(), subtitleExtensions) {
			continue
		}
		found = append(found, item.Name())
	}
	if len(found) == 0 {
		return "", fmt.Errorf("yt-dlp wrote no .vtt or .srt file")
	}
	sort.Strings(found)
	return found[0], nil
}

// subtitleLanguage recovers the language yt-dlp put between the marker and
// the extension, e.g. subs_<ts>.en-US.vtt.
func subtitleLanguage(file, marker, fallback string) string {
	trimmed := strings.TrimSuffix(file, filepath.Ext(file))
	trimmed = strings.TrimPrefix(trimmed, marker)
	trimmed = strings.TrimPrefix(trimmed, ".")
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
