package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"clipfetch/internal/history"
	"clipfetch/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and maintain the download history",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var status string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			statusFilter, err := history.ParseStatus(status)
			if err != nil {
				return err
			}
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			records, err := store.List(ctx.commandCtx(cmd), history.ListOptions{Limit: limit, Status: statusFilter})
			if err != nil {
				return err
			}
			if jsonOut {
				if records == nil {
					records = []*history.Record{}
				}
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No downloads recorded")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					shortID(rec.ID),
					rec.CreatedAt.Local().Format("2006-01-02 15:04"),
					string(rec.Kind),
					string(rec.Status),
					formatSize(rec.SizeBytes),
					rec.URL,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Created", "Kind", "Status", "Size", "URL"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of rows (0 for all)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (succeeded, failed)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print records as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single download by ID or unique ID prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			rec, err := store.Get(ctx.commandCtx(cmd), args[0])
			if err != nil {
				return err
			}
			switch format {
			case outputJSON:
				return writeJSON(cmd, rec)
			case outputYAML:
				return writeYAML(cmd, rec)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFields([][2]string{
				{"ID", rec.ID},
				{"Created", rec.CreatedAt.Local().Format(time.RFC3339)},
				{"Kind", string(rec.Kind)},
				{"Status", string(rec.Status)},
				{"URL", rec.URL},
				{"Resolution", rec.Resolution},
				{"Path", rec.Path},
				{"Size", formatSize(rec.SizeBytes)},
				{"Archive key", rec.ArchiveKey},
				{"Error", rec.Error},
			}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history rows older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			retention := cfg.HistoryRetention()
			if cmd.Flags().Changed("older-than-days") {
				if days <= 0 {
					return services.Wrap(services.ErrValidation, "cli", "history prune", "--older-than-days must be positive", nil)
				}
				retention = time.Duration(days) * 24 * time.Hour
			}
			if retention <= 0 {
				return services.Wrap(services.ErrValidation, "cli", "history prune",
					"retention is disabled; pass --older-than-days", nil)
			}
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			cutoff := ctx.now().Add(-retention)
			removed, err := store.Prune(ctx.commandCtx(cmd), cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d record(s) older than %s\n", removed, cutoff.Local().Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "older-than-days", 0, "Override the configured retention_days")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every history row",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			removed, err := store.Clear(ctx.commandCtx(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d record(s)\n", removed)
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatSize(bytes int64) string {
	switch {
	case bytes <= 0:
		return "-"
	case bytes < 1<<10:
		return strconv.FormatInt(bytes, 10) + " B"
	case bytes < 1<<20:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/(1<<10))
	case bytes < 1<<30:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/(1<<20))
	default:
		return fmt.Sprintf("%.2f GiB", float64(bytes)/(1<<30))
	}
}
