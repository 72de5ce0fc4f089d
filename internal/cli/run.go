package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ride-agent/internal/config"
	"ride-agent/internal/di"
	"ride-agent/internal/domain/entity"
	"ride-agent/internal/infrastructure/env"
)

func newRunCmd() *cobra.Command {
	var (
		searchText string
		exactMatch bool
		windowDays int
		headed     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a single registration run and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("search") {
				cfg.SearchText = searchText
			}
			if cmd.Flags().Changed("exact") {
				cfg.ExactMatch = exactMatch
			}
			if cmd.Flags().Changed("window-days") {
				cfg.WindowDays = windowDays
			}
			if cmd.Flags().Changed("headed") {
				cfg.Headless = !headed
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := di.NewContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			outcome := c.Executor.Execute(ctx)
			printOutcome(cmd, outcome)
			if !outcome.Success() {
				return fmt.Errorf("run failed: %s", outcome.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&searchText, "search", "", "ride title text to match (overrides RIDE_SEARCH_TEXT)")
	cmd.Flags().BoolVar(&exactMatch, "exact", false, "require an exact title match instead of substring")
	cmd.Flags().IntVar(&windowDays, "window-days", config.DefaultWindowDays, "how many days ahead to consider rides")
	cmd.Flags().BoolVar(&headed, "headed", false, "run the browser with a visible window")

	return cmd
}

func printOutcome(cmd *cobra.Command, outcome entity.RegistrationOutcome) {
	switch outcome.Kind {
	case entity.OutcomeRegistered:
		cmd.Printf("registered: %s on %s (%d attempt(s))\n",
			outcome.Ride.Title, outcome.Ride.Date.Format("2006-01-02"), len(outcome.Attempts))
	case entity.OutcomeAlreadyRegistered:
		cmd.Println("already registered (or ride closed); nothing to do")
	case entity.OutcomeNoMatchFound:
		cmd.Println("no matching ride found in the search window")
	default:
		cmd.Printf("failed: %s\n", outcome.Reason)
	}
}

func loadConfig() (config.Config, error) {
	return config.FromEnv(env.NewEnvService())
}
