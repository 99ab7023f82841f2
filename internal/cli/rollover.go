package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"question_cycle_service/internal/app"
	"question_cycle_service/internal/infra/cache"
	"question_cycle_service/internal/infra/config"
	idb "question_cycle_service/internal/infra/database"
	"question_cycle_service/internal/infra/logger"

	"github.com/spf13/cobra"
)

func newRolloverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Run one cycle rollover and report the refreshed regions",
		Long: `Run the rollover against the configured store once, using a fresh in-process cache.
The running server keeps its own cache; this command checks which regions the
next scheduled rollover would refresh and fails if the store cannot be read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load application configuration: %w", err)
			}
			logger.Init(cfg)

			db, err := idb.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("could not connect to database: %w", err)
			}
			defer db.Close()

			assignments, err := cache.NewAssignmentCache(cfg.CacheMaxEntries)
			if err != nil {
				return err
			}
			svc := app.NewAssignmentService(
				idb.NewQuestionRepository(db, cfg.DatabaseDriver),
				assignments,
				cfg.Cycle,
				cfg.CacheTTL,
				app.WithLogger(logger.Component("assignments")),
			)

			result, err := svc.RefreshAssignments(context.Background())
			if err != nil {
				return err
			}
			printRollover(cmd, result)
			return nil
		},
	}
}

func printRollover(cmd *cobra.Command, result app.RolloverResult) {
	regions := append([]string(nil), result.Regions...)
	sort.Strings(regions)
	fmt.Fprintf(cmd.OutOrStdout(), "cycle: %d\nregions refreshed: %d\n", result.Cycle, len(regions))
	if len(regions) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "regions: %s\n", strings.Join(regions, ", "))
	}
}
