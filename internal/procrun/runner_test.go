package procrun_test

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"clipfetch/internal/procrun"
)

type recordingSink struct {
	mu       sync.Mutex
	started  []string
	chunks   map[procrun.Stream][]string
	exits    []int
	failures []error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{chunks: make(map[procrun.Stream][]string)}
}

func (s *recordingSink) Starting(_ context.Context, command string, args []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, command+" "+strings.Join(args, " "))
}

func (s *recordingSink) Output(_ context.Context, _ string, stream procrun.Stream, chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[stream] = append(s.chunks[stream], chunk)
}

func (s *recordingSink) Exited(_ context.Context, _ string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exits = append(s.exits, code)
}

func (s *recordingSink) LaunchFailed(_ context.Context, _ string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, err)
}

func (s *recordingSink) joined(stream procrun.Stream) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.chunks[stream], "")
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func waitWithTimeout(t *testing.T, inv *procrun.Invocation) (string, error) {
	t.Helper()
	select {
	case <-inv.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("invocation did not finish")
	}
	return inv.Wait()
}

func TestRunReturnsStdoutOnSuccess(t *testing.T) {
	requireShell(t)
	runner := procrun.New()

	out, err := runner.Run(context.Background(), "sh", "-c", "printf hello")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out != "hello" {
		t.Fatalf("expected %q, got %q", "hello", out)
	}
}

func TestRunReportsNonZeroExit(t *testing.T) {
	requireShell(t)
	runner := procrun.New()

	_, err := runner.Run(context.Background(), "sh", "-c", "printf 'bad input' >&2; exit 2")
	var exitErr *procrun.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v", err, err)
	}
	if exitErr.Code != 2 {
		t.Fatalf("expected exit code 2, got %d", exitErr.Code)
	}
	if exitErr.Output != "bad input" {
		t.Fatalf("expected combined output %q, got %q", "bad input", exitErr.Output)
	}
	if !strings.Contains(exitErr.Error(), "bad input") {
		t.Fatalf("expected output tail in error message, got %q", exitErr.Error())
	}
}

func TestRunReportsExactExitCodes(t *testing.T) {
	requireShell(t)
	runner := procrun.New()

	for _, code := range []int{1, 3, 42, 255} {
		_, err := runner.Run(context.Background(), "sh", "-c", fmt.Sprintf("exit %d", code))
		var exitErr *procrun.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("exit %d: expected ExitError, got %v", code, err)
		}
		if exitErr.Code != code {
			t.Fatalf("expected code %d, got %d", code, exitErr.Code)
		}
	}
}

func TestRunMissingBinaryIsLaunchFailure(t *testing.T) {
	sink := newRecordingSink()
	runner := procrun.New(procrun.WithSink(sink))

	inv := runner.Start(context.Background(), "___not_a_real_binary___")
	out, err := waitWithTimeout(t, inv)
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	var launchErr *procrun.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("expected LaunchError, got %T: %v", err, err)
	}
	if launchErr.Reason() == "" {
		t.Fatal("expected non-empty reason")
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("expected exec.ErrNotFound in chain, got %v", err)
	}
	if _, exited := inv.ExitCode(); exited {
		t.Fatal("launch failure must not report an exit code")
	}
	if len(sink.failures) != 1 || len(sink.exits) != 0 {
		t.Fatalf("expected exactly one launch failure event, got failures=%d exits=%d", len(sink.failures), len(sink.exits))
	}
}

func TestRunEmptyCommandIsLaunchFailure(t *testing.T) {
	_, err := procrun.New().Run(context.Background(), "  ")
	var launchErr *procrun.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("expected LaunchError, got %v", err)
	}
}

func TestRunCombinesStdoutBeforeStderr(t *testing.T) {
	requireShell(t)
	runner := procrun.New()

	out, err := runner.Run(context.Background(), "sh", "-c", "printf err >&2; printf out")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out != "outerr" {
		t.Fatalf("expected stdout then stderr, got %q", out)
	}
}

func TestRunForwardsEveryChunkToSink(t *testing.T) {
	requireShell(t)
	sink := newRecordingSink()
	runner := procrun.New(procrun.WithSink(sink))

	script := "i=0; while [ $i -lt 200 ]; do echo line-$i; echo warn-$i >&2; i=$((i+1)); done"
	inv := runner.Start(context.Background(), "sh", "-c", script)
	out, err := waitWithTimeout(t, inv)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	stdout := sink.joined(procrun.Stdout)
	stderr := sink.joined(procrun.Stderr)
	if out != stdout+stderr {
		t.Fatal("result does not match the chunks reported to the sink")
	}
	if inv.Stdout() != stdout || inv.Stderr() != stderr {
		t.Fatal("invocation buffers diverge from sink chunks")
	}
	for i := 0; i < 200; i++ {
		if !strings.Contains(stdout, fmt.Sprintf("line-%d\n", i)) {
			t.Fatalf("missing stdout line %d", i)
		}
	}
	if strings.Index(stdout, "line-10\n") > strings.Index(stdout, "line-11\n") {
		t.Fatal("stdout chunks reordered")
	}
	if len(sink.started) != 1 || len(sink.exits) != 1 || sink.exits[0] != 0 {
		t.Fatalf("unexpected lifecycle events: started=%v exits=%v", sink.started, sink.exits)
	}
}

func TestRunPassesArgumentsVerbatim(t *testing.T) {
	if _, err := exec.LookPath("printf"); err != nil {
		t.Skip("printf not available")
	}
	runner := procrun.New()

	out, err := runner.Run(context.Background(), "printf", "%s|", "a b", "$HOME", "; rm -rf /")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out != "a b|$HOME|; rm -rf /|" {
		t.Fatalf("arguments were interpreted: %q", out)
	}
}

func TestRunClosesStdin(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	inv := procrun.New().Start(context.Background(), "cat")
	out, err := waitWithTimeout(t, inv)
	if err != nil {
		t.Fatalf("cat returned error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestRunSignalledProcessReportsNegativeCode(t *testing.T) {
	requireShell(t)
	_, err := procrun.New().Run(context.Background(), "sh", "-c", "kill -9 $$")
	var exitErr *procrun.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != -1 {
		t.Fatalf("expected code -1 for signalled process, got %d", exitErr.Code)
	}
}

func TestConcurrentInvocationsAreIsolated(t *testing.T) {
	requireShell(t)
	runner := procrun.New()

	const workers = 8
	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			script := fmt.Sprintf("for n in 1 2 3 4 5; do printf 'w%d-'; done", idx)
			results[idx], errs[idx] = runner.Run(context.Background(), "sh", "-c", script)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		want := strings.Repeat(fmt.Sprintf("w%d-", i), 5)
		if results[i] != want {
			t.Fatalf("worker %d: expected %q, got %q", i, want, results[i])
		}
	}
}

func TestExitCodeUnavailableWhileRunning(t *testing.T) {
	requireShell(t)
	inv := procrun.New().Start(context.Background(), "sh", "-c", "sleep 0.2; exit 7")
	if _, exited := inv.ExitCode(); exited {
		t.Fatal("expected no exit code before completion")
	}
	if _, err := waitWithTimeout(t, inv); err == nil {
		t.Fatal("expected failure")
	}
	code, exited := inv.ExitCode()
	if !exited || code != 7 {
		t.Fatalf("expected exit code 7, got %d (exited=%v)", code, exited)
	}
}

func TestCallerCanRaceAgainstTimer(t *testing.T) {
	requireShell(t)
	inv := procrun.New().Start(context.Background(), "sh", "-c", "sleep 2")
	select {
	case <-inv.Done():
		t.Fatal("expected the timer to win")
	case <-time.After(50 * time.Millisecond):
	}
	if _, err := waitWithTimeout(t, inv); err != nil {
		t.Fatalf("abandoned invocation should still complete: %v", err)
	}
}
