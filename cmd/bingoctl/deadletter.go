package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/osse101/BingoBot_Go/internal/config"
	"github.com/osse101/BingoBot_Go/internal/event"
)

func deadLetterCmd() *cobra.Command {
	var path string
	var limit int

	cmd := &cobra.Command{
		Use:   "deadletter",
		Short: "List completion events that could not be delivered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := event.ReadDeadLetterFile(path)
			if os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No dead letters.")
				return nil
			}
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			printDeadLetters(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	defaultPath := os.Getenv("DEAD_LETTER_PATH")
	if defaultPath == "" {
		defaultPath = config.DefaultDeadLetterPath
	}
	cmd.Flags().StringVar(&path, "path", defaultPath, "Dead-letter file")
	cmd.Flags().IntVar(&limit, "last", 0, "Only show the newest N entries")
	return cmd
}

func printDeadLetters(w io.Writer, entries []event.DeadLetterEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No dead letters.")
		return
	}
	for _, e := range entries {
		id := e.EventID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s  %-28s  event=%s  attempts=%d  %s\n",
			e.RecordedAt.Format(time.RFC3339), e.EventType, id, e.Attempts, e.LastError)
	}
}
