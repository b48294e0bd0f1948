package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipfetch/internal/logging"
	"clipfetch/internal/procrun"
	"clipfetch/internal/services"
)

const component = "ytdlp"

// Executor abstracts command execution for testability. Run returns the
// combined output on success and, where available, on failure too.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithRunner executes yt-dlp through the provided runner.
func WithRunner(runner *procrun.Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.exec = runnerExecutor{runner: runner}
		}
	}
}

// WithLogger sets the client logger. Unless an executor or runner is also
// supplied, yt-dlp output is streamed to the same logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for output filenames.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary       string
	downloadsDir string
	timeout      time.Duration
	exec         Executor
	logger       *slog.Logger
	now          func() time.Time
}

// New constructs a yt-dlp client writing into downloadsDir. A zero timeout
// waits for yt-dlp indefinitely.
func New(binary, downloadsDir string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "yt-dlp binary required", nil)
	}
	downloadsDir = strings.TrimSpace(downloadsDir)
	if downloadsDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "init", "downloads directory required", nil)
	}
	if timeout < 0 {
		timeout = 0
	}
	client := &Client{
		binary:       binary,
		downloadsDir: downloadsDir,
		timeout:      timeout,
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, component)
	if client.exec == nil {
		client.exec = runnerExecutor{runner: procrun.New(procrun.WithLogger(client.logger))}
	}
	return client, nil
}

// DownloadsDir returns the directory downloads are written to.
func (c *Client) DownloadsDir() string {
	return c.downloadsDir
}

// Binary returns the yt-dlp executable the client invokes.
func (c *Client) Binary() string {
	return c.binary
}

type runResult struct {
	output string
	err    error
}

// run executes yt-dlp and waits for it, racing the run against the client
// timeout. On expiry the child keeps running; only interest in it is dropped.
func (c *Client) run(ctx context.Context, operation string, args []string) (string, error) {
	output, _, err := c.runTracked(ctx, operation, args)
	return output, err
}

// runTracked is run that also returns a channel closed once the executor has
// returned, which may be after runTracked itself gave up on it.
func (c *Client) runTracked(ctx context.Context, operation string, args []string) (string, <-chan struct{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := services.InvocationIDFromContext(ctx); !ok {
		ctx = services.WithInvocationID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("running yt-dlp", "operation", operation, logging.FieldArgs, args)

	done := make(chan runResult, 1)
	finished := make(chan struct{})
	go func() {
		output, err := c.exec.Run(ctx, c.binary, args)
		close(finished)
		done <- runResult{output: output, err: err}
	}()

	var expired <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case res := <-done:
		if res.err != nil {
			return res.output, finished, c.classify(operation, res.err)
		}
		return res.output, finished, nil
	case <-expired:
		logger.Warn("yt-dlp timed out; abandoning run", "operation", operation, "timeout", c.timeout)
		return "", finished, services.Wrap(services.ErrTimeout, component, operation,
			fmt.Sprintf("yt-dlp did not finish within %s", c.timeout), nil)
	case <-ctx.Done():
		return "", finished, services.Wrap(services.ErrTransient, component, operation, "interrupted", ctx.Err())
	}
}

func (c *Client) classify(operation string, err error) error {
	var launchErr *procrun.LaunchError
	var exitErr *procrun.ExitError
	switch {
	case errors.As(err, &launchErr):
		return services.Wrap(services.ErrConfiguration, component, operation,
			fmt.Sprintf("cannot start %s (is yt-dlp installed?)", c.binary), err)
	case errors.As(err, &exitErr):
		return services.Wrap(services.ErrExternalTool, component, operation,
			fmt.Sprintf("yt-dlp exited with code %d", exitErr.Code), err)
	default:
		return services.Wrap(services.ErrExternalTool, component, operation, "yt-dlp failed", err)
	}
}

type runnerExecutor struct {
	runner *procrun.Runner
}

func (e runnerExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	return e.runner.Run(ctx, binary, args...)
}
