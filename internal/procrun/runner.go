package procrun

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
)

const readChunkSize = 32 * 1024

// Option configures the runner.
type Option func(*Runner)

// WithSink routes invocation events to the provided sink.
func WithSink(sink Sink) Option {
	return func(r *Runner) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// WithLogger routes invocation events to a LogSink backed by logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.sink = LogSink{Logger: logger}
		}
	}
}

// Runner launches external programs. It holds no per-invocation state, so a
// single Runner may start any number of concurrent invocations.
type Runner struct {
	sink Sink
}

// New constructs a runner. Without options every event is discarded.
func New(opts ...Option) *Runner {
	r := &Runner{sink: NopSink{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts command with args and waits for it to finish.
func (r *Runner) Run(ctx context.Context, command string, args ...string) (string, error) {
	return r.Start(ctx, command, args...).Wait()
}

// Start launches command with args and returns immediately. ctx only supplies
// logging fields; it does not cancel the child process.
func (r *Runner) Start(ctx context.Context, command string, args ...string) *Invocation {
	if ctx == nil {
		ctx = context.Background()
	}
	inv := newInvocation(command, args)
	r.sink.Starting(ctx, command, inv.Args)

	if strings.TrimSpace(command) == "" {
		r.launchFailed(ctx, inv, errors.New("command required"))
		return inv
	}

	cmd := exec.Command(command, inv.Args...) //nolint:gosec
	cmd.Stdin = nil
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.launchFailed(ctx, inv, err)
		return inv
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.launchFailed(ctx, inv, err)
		return inv
	}
	if err := cmd.Start(); err != nil {
		r.launchFailed(ctx, inv, err)
		return inv
	}

	go r.supervise(ctx, cmd, inv, stdout, stderr)
	return inv
}

func (r *Runner) launchFailed(ctx context.Context, inv *Invocation, err error) {
	launchErr := &LaunchError{Command: inv.Command, Err: err}
	r.sink.LaunchFailed(ctx, inv.Command, launchErr.Err)
	inv.finish(0, false, launchErr)
}

func (r *Runner) supervise(ctx context.Context, cmd *exec.Cmd, inv *Invocation, stdout, stderr io.Reader) {
	var wg sync.WaitGroup
	wg.Add(2)
	go r.pump(ctx, &wg, inv, Stdout, stdout)
	go r.pump(ctx, &wg, inv, Stderr, stderr)
	// Both pipes must reach EOF before Wait closes them.
	wg.Wait()

	code := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	r.sink.Exited(ctx, inv.Command, code)

	if code == 0 {
		inv.finish(code, true, nil)
		return
	}
	inv.finish(code, true, &ExitError{Command: inv.Command, Code: code, Output: inv.combined()})
}

// maxReadFailures bounds how many failed reads a stream tolerates before
// the pipe is treated as gone.
const maxReadFailures = 3

// streamWriter records each chunk on the invocation and forwards it to the sink.
type streamWriter struct {
	ctx    context.Context
	sink   Sink
	inv    *Invocation
	stream Stream
}

func (w streamWriter) Write(p []byte) (int, error) {
	chunk := string(p)
	w.inv.append(w.stream, chunk)
	w.sink.Output(w.ctx, w.inv.Command, w.stream, chunk)
	return len(p), nil
}

func (r *Runner) pump(ctx context.Context, wg *sync.WaitGroup, inv *Invocation, stream Stream, src io.Reader) {
	defer wg.Done()
	w := streamWriter{ctx: ctx, sink: r.sink, inv: inv, stream: stream}
	buf := make([]byte, readChunkSize)
	for failures := 0; ; failures++ {
		_, err := io.CopyBuffer(w, src, buf)
		if err == nil {
			return
		}
		// A failed read does not end the stream; whatever follows is still
		// captured, and the pipe stays drained so the child never blocks.
		if errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe) || failures+1 >= maxReadFailures {
			return
		}
	}
}
