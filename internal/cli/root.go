// Package cli implements the questiond command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "questiond",
		Short: "Serve one question per region per cycle",
		Long: `questiond assigns a question of the cycle to every region, serves it from a cache,
and refreshes the cache when a new cycle starts. Configuration is read from the
environment and an optional .env file.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newCycleCommand(), newRolloverCommand(), newMigrateCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
