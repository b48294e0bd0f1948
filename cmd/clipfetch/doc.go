// Package main hosts the clipfetch CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into yt-dlp runs through
// internal/ytdlp, records outcomes in the history database, and optionally
// archives finished files to S3. Configuration resolution and logger setup
// live in commandContext so subcommands only describe user-facing behaviour.
//
// Errors carry the markers from internal/services; main maps them to exit
// codes.
package main
