package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYTDLP()
	c.normalizeLogging()
	c.normalizeArchive()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds == 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotifyTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DownloadsDir) == "" {
		c.Paths.DownloadsDir = defaultDownloadsDir
	}
	if c.Paths.DownloadsDir, err = expandPath(strings.TrimSpace(c.Paths.DownloadsDir)); err != nil {
		return fmt.Errorf("paths.downloads_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	// An empty log dir disables the log file.
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYTDLP() {
	c.YTDLP.Binary = strings.TrimSpace(c.YTDLP.Binary)
	if c.YTDLP.Binary == "" {
		c.YTDLP.Binary = defaultYTDLPBinary
	}
	c.YTDLP.DefaultResolution = strings.ToLower(strings.TrimSpace(c.YTDLP.DefaultResolution))
	if c.YTDLP.DefaultResolution == "" {
		c.YTDLP.DefaultResolution = defaultResolution
	}
	c.YTDLP.AudioFormat = strings.ToLower(strings.TrimSpace(c.YTDLP.AudioFormat))
	if c.YTDLP.AudioFormat == "" {
		c.YTDLP.AudioFormat = defaultAudioFormat
	}
	c.YTDLP.SubtitleLanguage = strings.TrimSpace(c.YTDLP.SubtitleLanguage)
	if c.YTDLP.SubtitleLanguage == "" {
		c.YTDLP.SubtitleLanguage = defaultSubtitleLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeArchive() {
	c.Archive.Bucket = strings.TrimSpace(c.Archive.Bucket)
	c.Archive.Region = strings.TrimSpace(c.Archive.Region)
	if c.Archive.Region == "" {
		c.Archive.Region = defaultArchiveRegion
	}
	c.Archive.Prefix = strings.Trim(strings.TrimSpace(c.Archive.Prefix), "/")
	c.Archive.EndpointURL = strings.TrimRight(strings.TrimSpace(c.Archive.EndpointURL), "/")
	c.Archive.AccessKeyID = strings.TrimSpace(c.Archive.AccessKeyID)
	c.Archive.SecretAccessKey = strings.TrimSpace(c.Archive.SecretAccessKey)
}
