package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"clipfetch/internal/archive"
	"clipfetch/internal/config"
	"clipfetch/internal/history"
	"clipfetch/internal/logging"
	"clipfetch/internal/procrun"
	"clipfetch/internal/services"
	"clipfetch/internal/ytdlp"
)

// newUploader builds the archive uploader; tests replace it with a fake.
var newUploader = func(ctx context.Context, cfg config.Archive) (archive.Uploader, error) {
	return archive.NewS3Uploader(ctx, cfg)
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configFile bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	store *history.Store

	now func() time.Time
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		now:          time.Now,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if _, err := logging.ParseLevel(level); err != nil {
				c.configErr = services.Wrap(services.ErrValidation, "cli", "parse --log-level", "", err)
				return
			}
			cfg.Logging.Level = level
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configFile = exists
	})
	return c.config, c.configErr
}

// loggerFor returns the process logger. Commands that skip config loading get
// a console logger at the default level.
func (c *commandContext) loggerFor() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: "info", Format: "console"})
			logger.Warn("falling back to console logger", logging.Error(err))
		}
		c.logger = logger
	})
	return c.logger
}

// commandCtx stamps a fresh correlation ID onto the command's context.
func (c *commandContext) commandCtx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithRequestID(ctx, newRequestID())
}

func (c *commandContext) client() (*ytdlp.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.loggerFor()
	runner := procrun.New(procrun.WithLogger(logging.NewComponentLogger(logger, "procrun")))
	return ytdlp.New(cfg.YTDLP.Binary, cfg.Paths.DownloadsDir, cfg.YTDLPTimeout(),
		ytdlp.WithRunner(runner),
		ytdlp.WithLogger(logger),
		ytdlp.WithClock(c.now),
	)
}

// historyStore opens the history database on first use. It returns nil when
// history is disabled.
func (c *commandContext) historyStore() (*history.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "open history", cfg.HistoryPath(), err)
	}
	c.store = store
	return store, nil
}

// requireHistory is historyStore for commands that cannot run without it.
func (c *commandContext) requireHistory() (*history.Store, error) {
	store, err := c.historyStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "history",
			"download history is disabled (set [history] enabled = true)", nil)
	}
	return store, nil
}

func (c *commandContext) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.loggerFor().Warn("failed to close history database", logging.Error(err))
		}
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
