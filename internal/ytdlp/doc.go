// Package ytdlp drives the external yt-dlp program.
//
// The Client builds argument lists for video, audio, subtitle, and metadata
// runs, hands them to a procrun.Runner (or an injected Executor), and then
// finds what yt-dlp wrote to disk. Video and audio downloads are serialized
// per downloads directory with an advisory file lock so the
// newest-file fallback cannot pick up another process's output.
//
// Failures carry services markers: a non-zero yt-dlp exit maps to
// ErrExternalTool, a missing binary to ErrConfiguration, rejected input to
// ErrValidation, and an expired client timeout to ErrTimeout.
package ytdlp
