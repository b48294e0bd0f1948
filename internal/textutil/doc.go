// Package textutil provides the small text helpers around yt-dlp runs:
// timestamped and random filenames, filename sanitization, and flattening of
// SRT/WebVTT subtitles into a plain transcript.
package textutil
