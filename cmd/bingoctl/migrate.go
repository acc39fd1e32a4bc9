package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/osse101/BingoBot_Go/internal/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := database.Migrate(ctx, pool); err != nil {
					return err
				}
				return printVersion(ctx, cmd, pool)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := database.MigrateDown(ctx, pool); err != nil {
					return err
				}
				return printVersion(ctx, cmd, pool)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				return printVersion(ctx, cmd, pool)
			})
		},
	})
	return cmd
}

func printVersion(ctx context.Context, cmd *cobra.Command, pool *pgxpool.Pool) error {
	v, err := database.MigrationVersion(ctx, pool)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
	return nil
}

// withDB opens a pool for the duration of fn
func withDB(cmd *cobra.Command, fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := openDB(ctx, cmd)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, pool)
}
