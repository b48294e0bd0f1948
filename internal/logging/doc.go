// Package logging assembles structured slog loggers and formatting helpers used
// across clipfetch.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so the yt-dlp client and the
// process runner can automatically tag log lines with invocation IDs, source
// URLs, and correlation IDs. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the tool.
package logging
