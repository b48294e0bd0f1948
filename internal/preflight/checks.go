package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"clipfetch/internal/procrun"
)

const (
	binaryCheckTimeout  = 15 * time.Second
	archiveCheckTimeout = 10 * time.Second
)

// CheckBinary resolves binary on PATH and runs it with --version.
func CheckBinary(ctx context.Context, runner *procrun.Runner, name, binary string) Result {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH", binary)}
	}
	if runner == nil {
		runner = procrun.New()
	}

	inv := runner.Start(ctx, resolved, "--version")
	timer := time.NewTimer(binaryCheckTimeout)
	defer timer.Stop()
	select {
	case <-inv.Done():
	case <-timer.C:
		return Result{Name: name, Detail: fmt.Sprintf("%s --version did not finish within %s", resolved, binaryCheckTimeout)}
	}

	output, err := inv.Wait()
	if err != nil {
		var launchErr *procrun.LaunchError
		if errors.As(err, &launchErr) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", resolved, launchErr.Reason())}
		}
		code, _ := inv.ExitCode()
		return Result{Name: name, Detail: fmt.Sprintf("%s --version exited with code %d", resolved, code)}
	}
	version := firstLine(output)
	if version == "" {
		version = "version unknown"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", version, resolved)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minBytes available to unprivileged users.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	available := uint64(stat.Bavail) * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free (minimum %s)", formatGiB(available), formatGiB(minBytes))
	if available < minBytes {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// Pinger reports whether a remote store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckArchive verifies the archive bucket is reachable.
func CheckArchive(ctx context.Context, name string, pinger Pinger) Result {
	checkCtx, cancel := context.WithTimeout(ctx, archiveCheckTimeout)
	defer cancel()
	if err := pinger.Ping(checkCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Name: name, Detail: "check timed out (bucket unreachable)"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

func firstLine(output string) string {
	output = strings.TrimSpace(output)
	if idx := strings.IndexByte(output, '\n'); idx >= 0 {
		output = output[:idx]
	}
	return strings.TrimSpace(output)
}

func formatGiB(bytes uint64) string {
	return fmt.Sprintf("%.1f GiB", float64(bytes)/float64(1<<30))
}
