package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ride-agent/internal/di"
	"ride-agent/internal/scheduler"
)

func newScheduleCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the agent on a fixed interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				cfg.PollInterval = interval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := di.NewContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			sched := scheduler.New(cfg.PollInterval, c.Logger, func(tickCtx context.Context) {
				c.Executor.Execute(tickCtx)
			})
			if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "time between runs (overrides POLL_INTERVAL)")

	return cmd
}
