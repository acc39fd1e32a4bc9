package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func waitForDBCmd() *cobra.Command {
	var attempts int
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "wait-for-db",
		Short: "Wait until the database accepts connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return waitForDB(cmd, attempts, interval)
		},
	}
	cmd.Flags().IntVar(&attempts, "attempts", 30, "Connection attempts before giving up")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Delay between attempts")
	return cmd
}

func waitForDB(cmd *cobra.Command, attempts int, interval time.Duration) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		pool, err := openDB(ctx, cmd)
		if err == nil {
			pool.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Database is ready")
			return nil
		}
		lastErr = err
		fmt.Fprintf(cmd.ErrOrStderr(), "Database not ready (%d/%d): %v\n", i, attempts, err)

		if i < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	return fmt.Errorf("database failed to become ready after %d attempts: %w", attempts, lastErr)
}
