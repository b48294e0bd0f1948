// Package weburl holds the URL checks applied before a URL is handed to yt-dlp.
package weburl

import (
	"net/url"
	"strings"

	"clipfetch/internal/services"
)

// Validate reports whether raw is an absolute URL with a scheme and host.
func Validate(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return services.Wrap(services.ErrValidation, "weburl", "validate", "URL is empty", nil)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return services.Wrap(services.ErrValidation, "weburl", "validate", "Invalid URL "+quote(trimmed), err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return services.Wrap(services.ErrValidation, "weburl", "validate", "Invalid URL "+quote(trimmed)+": scheme and host are required", nil)
	}
	return nil
}

// IsYouTube reports whether raw points at youtube.com or youtu.be. Unparsable
// input is never a YouTube URL.
func IsYouTube(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")
}

func quote(s string) string {
	return "\"" + s + "\""
}
