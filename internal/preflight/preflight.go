package preflight

import (
	"context"

	"clipfetch/internal/archive"
	"clipfetch/internal/config"
	"clipfetch/internal/procrun"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, runner *procrun.Runner) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBinary(ctx, runner, "yt-dlp", cfg.YTDLP.Binary),
		CheckDirectoryAccess("Downloads directory", cfg.Paths.DownloadsDir),
	}
	if cfg.Preflight.MinFreeGiB > 0 {
		results = append(results, CheckFreeSpace("Free space", cfg.Paths.DownloadsDir, cfg.MinFreeBytes()))
	}
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	if cfg.Archive.Enabled {
		results = append(results, checkArchiveConfig(ctx, cfg.Archive))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func checkArchiveConfig(ctx context.Context, cfg config.Archive) Result {
	uploader, err := archive.NewS3Uploader(ctx, cfg)
	if err != nil {
		return Result{Name: "Archive bucket", Detail: err.Error()}
	}
	return CheckArchive(ctx, "Archive bucket", uploader)
}
