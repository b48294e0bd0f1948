// Package config loads, normalizes, and validates clipfetch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a working-directory .env file, and honours
// CLIPFETCH_* environment overrides. The Config type centralizes every knob the
// CLI and the yt-dlp client need so download directories, history storage, and
// archive credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
