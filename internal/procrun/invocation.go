package procrun

import (
	"strings"
	"sync"
)

// Invocation tracks a single run of an external program. Its buffers grow as
// output arrives; once Done is closed the invocation no longer changes.
type Invocation struct {
	Command string
	Args    []string

	mu     sync.Mutex
	stdout strings.Builder
	stderr strings.Builder

	once     sync.Once
	done     chan struct{}
	exitCode int
	exited   bool
	output   string
	err      error
}

func newInvocation(command string, args []string) *Invocation {
	return &Invocation{
		Command: command,
		Args:    append([]string(nil), args...),
		done:    make(chan struct{}),
	}
}

func (i *Invocation) append(stream Stream, chunk string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if stream == Stderr {
		i.stderr.WriteString(chunk)
		return
	}
	i.stdout.WriteString(chunk)
}

// combined returns stdout followed by stderr.
func (i *Invocation) combined() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stdout.String() + i.stderr.String()
}

// finish records the terminal outcome. Only the first call has any effect;
// it reports whether this call was the one that finalized the invocation.
func (i *Invocation) finish(exitCode int, exited bool, err error) bool {
	won := false
	i.once.Do(func() {
		won = true
		i.exitCode = exitCode
		i.exited = exited
		i.output = i.combined()
		i.err = err
		close(i.done)
	})
	return won
}

// Done is closed once the invocation has a terminal outcome.
func (i *Invocation) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until the invocation finishes. It returns the combined output
// (stdout then stderr) together with nil, an *ExitError, or a *LaunchError.
// The output is returned on failure too so callers can surface it.
func (i *Invocation) Wait() (string, error) {
	<-i.done
	return i.output, i.err
}

// ExitCode returns the exit status once the process has terminated. The
// second value is false while the process is running and after a launch
// failure.
func (i *Invocation) ExitCode() (int, bool) {
	select {
	case <-i.done:
		return i.exitCode, i.exited
	default:
		return 0, false
	}
}

// Stdout returns a snapshot of everything read from standard output so far.
func (i *Invocation) Stdout() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stdout.String()
}

// Stderr returns a snapshot of everything read from standard error so far.
func (i *Invocation) Stderr() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stderr.String()
}
