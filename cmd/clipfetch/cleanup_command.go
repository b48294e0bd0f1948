package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipfetch/internal/config"
	"clipfetch/internal/fileutil"
	"clipfetch/internal/services"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var stale bool
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup [dir]",
		Short: "Remove a scratch directory, or sweep leftovers from the downloads directory",
		Long: "With a directory argument, removes it and everything in it.\n" +
			"With --stale, removes subtitle scratch directories and partial downloads\n" +
			"older than --older-than from the configured downloads directory.",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if stale {
				if len(args) > 0 {
					return services.Wrap(services.ErrValidation, "cli", "cleanup", "--stale does not take a directory", nil)
				}
				if olderThan <= 0 {
					return services.Wrap(services.ErrValidation, "cli", "cleanup", "--older-than must be positive", nil)
				}
				if _, err := ctx.ensureConfig(); err != nil {
					return err
				}
				client, err := ctx.client()
				if err != nil {
					return err
				}
				result := client.CleanLeftovers(olderThan)
				for _, path := range result.Removed {
					fmt.Fprintf(out, "Removed %s\n", path)
				}
				fmt.Fprintf(out, "Removed %d stale item(s) from %s\n", len(result.Removed), client.DownloadsDir())
				if len(result.Errors) > 0 {
					first := result.Errors[0]
					return services.Wrap(services.ErrTransient, "cli", "cleanup",
						fmt.Sprintf("%d item(s) could not be removed", len(result.Errors)),
						fmt.Errorf("%s: %w", first.Path, first.Err))
				}
				return nil
			}

			if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
				return services.Wrap(services.ErrValidation, "cli", "cleanup", "directory is required (or pass --stale)", nil)
			}
			dir := strings.TrimSpace(args[0])
			expanded, err := config.ExpandPath(dir)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "cleanup", dir, err)
			}
			fileutil.SafeCleanup(expanded, ctx.loggerFor())
			fmt.Fprintf(out, "Cleaned up %s\n", expanded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&stale, "stale", false, "Sweep interrupted-run leftovers from the downloads directory")
	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Minimum age of leftovers removed by --stale")
	return cmd
}
