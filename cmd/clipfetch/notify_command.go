package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipfetch/internal/notifications"
	"clipfetch/internal/services"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.NtfyTopic == "" {
				return services.Wrap(services.ErrConfiguration, "cli", "test-notify",
					"notifications are disabled (set [notifications] ntfy_topic)", nil)
			}
			svc := notifications.NewService(cfg)
			if err := svc.Publish(ctx.commandCtx(cmd), notifications.EventTest, nil); err != nil {
				return services.Wrap(services.ErrTransient, "cli", "test-notify", "", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
