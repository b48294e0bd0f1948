// Package services defines shared utilities consumed by the yt-dlp client,
// the CLI, and the supporting stores.
//
// Key responsibilities:
//   - Context helpers that stamp invocation IDs, source URLs, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent CLI exit codes.
//
// Use these helpers when wiring new components so operational behaviour
// (error classification, observability) stays uniform across the tool.
package services
