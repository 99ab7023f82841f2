package cli

import (
	"fmt"
	"time"

	"question_cycle_service/internal/domain/cycle"
	"question_cycle_service/internal/infra/config"

	"github.com/spf13/cobra"
)

func newCycleCommand() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Print the current cycle number",
		Long:  "Print the cycle number for now, or for the RFC3339 instant given with --at, using CYCLE_START_DATE, CYCLE_DURATION and CYCLE_TIMEZONE.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.LoadDotEnv()
			cfg, err := config.ParseCycle()
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				now, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
			}

			n := cycle.Current(cfg, now)
			fmt.Fprintf(cmd.OutOrStdout(), "cycle: %d\nstarted: %s\nnext: %s\n",
				n,
				cycle.StartOf(cfg, n).Format(time.RFC3339),
				cycle.StartOf(cfg, n+1).Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC3339 instant instead of now")
	return cmd
}
