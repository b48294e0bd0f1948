package procrun

import (
	"fmt"
	"strings"
)

const exitErrorTailLines = 10

// ExitError reports a process that ran but terminated with a non-zero status.
// A process killed by a signal reports Code -1.
type ExitError struct {
	Command string
	Code    int
	// Output is the combined stdout and stderr captured before exit.
	Output string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q failed with exit code %d", e.Command, e.Code)
	if tail := outputTail(e.Output, exitErrorTailLines); tail != "" {
		msg += ":\n" + tail
	}
	return msg
}

// LaunchError reports a program the operating system could not start, so no
// exit status exists.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %q: %s", e.Command, e.Reason())
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Reason returns the operating system's explanation for the failure.
func (e *LaunchError) Reason() string {
	if e.Err == nil {
		return "unknown error"
	}
	if reason := strings.TrimSpace(e.Err.Error()); reason != "" {
		return reason
	}
	return "unknown error"
}

func outputTail(output string, maxLines int) string {
	trimmed := strings.TrimRight(output, "\r\n\t ")
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
