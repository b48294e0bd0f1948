// Package preflight provides readiness checks for the yt-dlp binary, the
// filesystem paths clipfetch writes into, and the optional archive bucket.
//
// The CLI "clipfetch status" command runs RunAll and renders the results as a
// table. Each check is gated by its config toggle; disabled features are
// skipped.
package preflight
