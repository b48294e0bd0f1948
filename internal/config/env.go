package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "CLIPFETCH"

// envOverrides lists the CLIPFETCH_* variables that take precedence over the
// config file. Pointer fields stay nil when the variable is unset.
type envOverrides struct {
	DownloadsDir     *string `envconfig:"DOWNLOADS_DIR"`
	StateDir         *string `envconfig:"STATE_DIR"`
	LogDir           *string `envconfig:"LOG_DIR"`
	YTDLPBinary      *string `envconfig:"YTDLP_BINARY"`
	Resolution       *string `envconfig:"RESOLUTION"`
	TimeoutSeconds   *int    `envconfig:"TIMEOUT_SECONDS"`
	AudioFormat      *string `envconfig:"AUDIO_FORMAT"`
	SubtitleLanguage *string `envconfig:"SUBTITLE_LANGUAGE"`
	LogFormat        *string `envconfig:"LOG_FORMAT"`
	LogLevel         *string `envconfig:"LOG_LEVEL"`
	HistoryEnabled   *bool   `envconfig:"HISTORY_ENABLED"`
	ArchiveEnabled   *bool   `envconfig:"ARCHIVE_ENABLED"`
	ArchiveBucket    *string `envconfig:"ARCHIVE_BUCKET"`
	ArchiveRegion    *string `envconfig:"ARCHIVE_REGION"`
	ArchivePrefix    *string `envconfig:"ARCHIVE_PREFIX"`
	ArchiveEndpoint  *string `envconfig:"ARCHIVE_ENDPOINT_URL"`
	ArchiveKeyID     *string `envconfig:"ARCHIVE_ACCESS_KEY_ID"`
	ArchiveSecret    *string `envconfig:"ARCHIVE_SECRET_ACCESS_KEY"`
	NtfyTopic        *string `envconfig:"NTFY_TOPIC"`
}

// loadDotEnv populates the process environment from a .env file. Variables
// already present in the environment win. A missing file is fine.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}

	setString(&c.Paths.DownloadsDir, env.DownloadsDir)
	setString(&c.Paths.StateDir, env.StateDir)
	setString(&c.Paths.LogDir, env.LogDir)
	setString(&c.YTDLP.Binary, env.YTDLPBinary)
	setString(&c.YTDLP.DefaultResolution, env.Resolution)
	if env.TimeoutSeconds != nil {
		c.YTDLP.TimeoutSeconds = *env.TimeoutSeconds
	}
	setString(&c.YTDLP.AudioFormat, env.AudioFormat)
	setString(&c.YTDLP.SubtitleLanguage, env.SubtitleLanguage)
	setString(&c.Logging.Format, env.LogFormat)
	setString(&c.Logging.Level, env.LogLevel)
	if env.HistoryEnabled != nil {
		c.History.Enabled = *env.HistoryEnabled
	}
	if env.ArchiveEnabled != nil {
		c.Archive.Enabled = *env.ArchiveEnabled
	}
	setString(&c.Archive.Bucket, env.ArchiveBucket)
	setString(&c.Archive.Region, env.ArchiveRegion)
	setString(&c.Archive.Prefix, env.ArchivePrefix)
	setString(&c.Archive.EndpointURL, env.ArchiveEndpoint)
	setString(&c.Archive.AccessKeyID, env.ArchiveKeyID)
	setString(&c.Archive.SecretAccessKey, env.ArchiveSecret)
	setString(&c.Notifications.NtfyTopic, env.NtfyTopic)
	return nil
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}
