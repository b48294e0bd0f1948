package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipfetch/internal/logging"
	"clipfetch/internal/preflight"
	"clipfetch/internal/procrun"
	"clipfetch/internal/services"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that yt-dlp and the configured directories are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runner := procrun.New(procrun.WithLogger(logging.NewComponentLogger(ctx.loggerFor(), "preflight")))
			results := preflight.RunAll(ctx.commandCtx(cmd), cfg, runner)

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				state := "ok"
				if !r.Passed {
					state = "FAIL"
				}
				rows = append(rows, []string{r.Name, state, r.Detail})
			}
			out := cmd.OutOrStdout()
			configPath := ctx.configPath
			if !ctx.configFile {
				configPath = "(defaults)"
			}
			fmt.Fprintf(out, "Config: %s\n", configPath)
			fmt.Fprintf(out, "History: %s  Archive: %s  Notifications: %s\n",
				yesNo(cfg.History.Enabled), yesNo(cfg.Archive.Enabled), yesNo(cfg.Notifications.NtfyTopic != ""))
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if !preflight.AllPassed(results) {
				return services.Wrap(services.ErrConfiguration, "cli", "status", "one or more checks failed", nil)
			}
			return nil
		},
	}
}
