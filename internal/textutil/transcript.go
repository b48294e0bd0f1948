package textutil

import (
	"regexp"
	"strings"
)

var (
	cueIndexPattern = regexp.MustCompile(`^\d+$`)
	// Timing lines, optionally followed by WebVTT cue settings.
	cueTimingPattern = regexp.MustCompile(`^(\d{2}:)?\d{2}:\d{2}[.,]\d{3}\s*-->\s*(\d{2}:)?\d{2}:\d{2}[.,]\d{3}(\s+.*)?$`)
	markupPattern    = regexp.MustCompile(`<[^>]*>`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// CleanSubtitleToTranscript flattens SRT or WebVTT content into a single line
// of text. Cue numbers, timing lines, WebVTT headers, and inline tags are
// dropped. Consecutive repeated lines, which auto-generated captions produce
// as text rolls forward, are kept once.
func CleanSubtitleToTranscript(content string) string {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	kept := make([]string, 0, len(lines))
	var previous string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || cueIndexPattern.MatchString(trimmed) || cueTimingPattern.MatchString(trimmed) {
			continue
		}
		if isVTTHeader(trimmed) {
			continue
		}
		text := strings.TrimSpace(markupPattern.ReplaceAllString(trimmed, ""))
		if text == "" || text == previous {
			continue
		}
		previous = text
		kept = append(kept, text)
	}

	joined := strings.Join(kept, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(joined, " "))
}

func isVTTHeader(line string) bool {
	switch {
	case line == "WEBVTT", strings.HasPrefix(line, "WEBVTT "):
		return true
	case strings.HasPrefix(line, "Kind:"), strings.HasPrefix(line, "Language:"):
		return true
	case line == "NOTE", strings.HasPrefix(line, "NOTE "):
		return true
	}
	return false
}
