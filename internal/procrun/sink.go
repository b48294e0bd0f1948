package procrun

import (
	"context"
	"log/slog"
	"strings"

	"clipfetch/internal/logging"
)

// Stream identifies which output pipe a chunk came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Sink observes an invocation as it progresses. Output is called from the
// reader goroutines, possibly concurrently for the two streams, so
// implementations must be safe for concurrent use.
type Sink interface {
	Starting(ctx context.Context, command string, args []string)
	Output(ctx context.Context, command string, stream Stream, chunk string)
	Exited(ctx context.Context, command string, code int)
	LaunchFailed(ctx context.Context, command string, err error)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Starting(context.Context, string, []string) {}
func (NopSink) Output(context.Context, string, Stream, string) {}
func (NopSink) Exited(context.Context, string, int) {}
func (NopSink) LaunchFailed(context.Context, string, error) {}

// LogSink forwards invocation events to a slog logger, one record per output
// line, tagged with the context fields from the logging package.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) logger(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, s.Logger).With(logging.FieldComponent, "procrun")
}

func (s LogSink) Starting(ctx context.Context, command string, args []string) {
	s.logger(ctx).Info("executing command",
		logging.FieldCommand, command,
		logging.FieldArgs, strings.Join(args, " "),
	)
}

func (s LogSink) Output(ctx context.Context, command string, stream Stream, chunk string) {
	logger := s.logger(ctx)
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		logger.Info(line, logging.FieldCommand, command, logging.FieldStream, stream.String())
	}
}

func (s LogSink) Exited(ctx context.Context, command string, code int) {
	s.logger(ctx).Info("process exited", logging.FieldCommand, command, logging.FieldExitCode, code)
}

func (s LogSink) LaunchFailed(ctx context.Context, command string, err error) {
	s.logger(ctx).Error("failed to start process", logging.FieldCommand, command, logging.FieldError, err)
}
