package config

const (
	defaultConfigPath        = "~/.config/clipfetch/config.toml"
	projectConfigFile        = "clipfetch.toml"
	dotEnvFile               = ".env"
	historyFileName          = "history.db"
	logFileName              = "clipfetch.log"
	defaultDownloadsDir      = "~/Downloads/clipfetch"
	defaultStateDir          = "~/.local/share/clipfetch"
	defaultLogDir            = "~/.local/share/clipfetch/logs"
	defaultYTDLPBinary       = "yt-dlp"
	defaultResolution        = "720p"
	defaultAudioFormat       = "mp3"
	defaultSubtitleLanguage  = "en"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultHistoryRetention  = 90
	defaultArchivePrefix     = "clipfetch"
	defaultArchiveRegion     = "us-east-1"
	defaultPreflightMinSpace = 1
	defaultNotifyTimeout     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadsDir: defaultDownloadsDir,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
		},
		YTDLP: YTDLP{
			Binary:            defaultYTDLPBinary,
			DefaultResolution: defaultResolution,
			AudioFormat:       defaultAudioFormat,
			SubtitleLanguage:  defaultSubtitleLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetention,
		},
		Archive: Archive{
			Region: defaultArchiveRegion,
			Prefix: defaultArchivePrefix,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeout,
			NotifyFailures:        true,
		},
		Preflight: Preflight{
			MinFreeGiB: defaultPreflightMinSpace,
		},
	}
}
