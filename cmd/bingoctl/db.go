package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/osse101/BingoBot_Go/internal/config"
	"github.com/osse101/BingoBot_Go/internal/database"
)

// cliMaxConns keeps operator commands from competing with the service for connections
const cliMaxConns = 2

// openDB connects using --dsn when given, otherwise the service configuration
func openDB(ctx context.Context, cmd *cobra.Command) (*pgxpool.Pool, error) {
	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		dsn = cfg.GetDBConnString()
	}
	return database.NewPool(ctx, dsn, cliMaxConns, config.DefaultDBMaxConnIdleTime, config.DefaultDBMaxConnLifetime)
}
