package config

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	validResolutions = map[string]struct{}{"480p": {}, "720p": {}, "1080p": {}, "best": {}}
	validAudio       = map[string]struct{}{"best": {}, "aac": {}, "alac": {}, "flac": {}, "m4a": {}, "mp3": {}, "opus": {}, "vorbis": {}, "wav": {}}
	validLogFormats  = map[string]struct{}{"console": {}, "json": {}}
	validLogLevels   = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {}}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYTDLP(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if c.Preflight.MinFreeGiB < 0 {
		return errors.New("preflight.min_free_gib must be >= 0")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DownloadsDir == "" {
		return errors.New("paths.downloads_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateYTDLP() error {
	if c.YTDLP.Binary == "" {
		return errors.New("ytdlp.binary must be set")
	}
	if _, ok := validResolutions[c.YTDLP.DefaultResolution]; !ok {
		return fmt.Errorf("ytdlp.default_resolution: unsupported value %q (expected 480p, 720p, 1080p, or best)", c.YTDLP.DefaultResolution)
	}
	if c.YTDLP.TimeoutSeconds < 0 {
		return errors.New("ytdlp.timeout_seconds must be >= 0")
	}
	if _, ok := validAudio[c.YTDLP.AudioFormat]; !ok {
		return fmt.Errorf("ytdlp.audio_format: unsupported value %q", c.YTDLP.AudioFormat)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if !c.Archive.Enabled {
		return nil
	}
	if c.Archive.Bucket == "" {
		return errors.New("archive.bucket must be set when archive.enabled is true")
	}
	if (c.Archive.AccessKeyID == "") != (c.Archive.SecretAccessKey == "") {
		return errors.New("archive.access_key_id and archive.secret_access_key must be set together")
	}
	if c.Archive.EndpointURL != "" {
		parsed, err := url.Parse(c.Archive.EndpointURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("archive.endpoint_url: invalid URL %q", c.Archive.EndpointURL)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeoutSeconds < 0 {
		return errors.New("notifications.request_timeout_seconds must be >= 0")
	}
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic: expected an http(s) topic URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}
