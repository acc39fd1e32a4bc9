// Command bingoctl is the operator CLI: schema migrations, board authoring
// and dead-letter inspection.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bingoctl",
		Short:        "Operate the bingo ingestion service",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().String("dsn", "", "Postgres connection URL (defaults to the DB_* environment)")
	root.AddCommand(migrateCmd())
	root.AddCommand(boardCmd())
	root.AddCommand(waitForDBCmd())
	root.AddCommand(healthCmd())
	root.AddCommand(deadLetterCmd())
	root.AddCommand(versionCmd())
	return root
}
