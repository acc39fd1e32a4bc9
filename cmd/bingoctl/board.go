package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/osse101/BingoBot_Go/internal/board"
	"github.com/osse101/BingoBot_Go/internal/bootstrap"
	"github.com/osse101/BingoBot_Go/internal/database/postgres"
)

func boardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Validate, inspect and import board definitions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file.yaml>",
		Short: "Check a board definition without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadDefinition(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tiles, %d teams, ok\n", def.Board.Name, len(def.Board.Tiles), len(def.Teams))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "keys <file.yaml>",
		Short: "Print the progress key of every requirement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadDefinition(args[0])
			if err != nil {
				return err
			}
			printKeys(cmd.OutOrStdout(), board.Keys(def))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Validate a board definition and store it with its teams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				imported, err := bootstrap.ImportBoardFile(ctx, postgres.NewBoardRepository(pool), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported board %q as id %d\n", imported.Name, imported.ID)
				for _, tile := range imported.Tiles {
					fmt.Fprintf(cmd.OutOrStdout(), "  tile %d: %s (id %d)\n", tile.Position, tile.Name, tile.ID)
				}
				return nil
			})
		},
	})
	return cmd
}

func loadDefinition(path string) (*board.Definition, error) {
	loader, err := board.NewLoader()
	if err != nil {
		return nil, err
	}
	return loader.LoadFile(path)
}

func printKeys(w io.Writer, tiles []board.TileKeys) {
	for _, tile := range tiles {
		fmt.Fprintf(w, "%d. %s\n", tile.Position, tile.TileName)
		for _, key := range tile.Keys {
			fmt.Fprintf(w, "   %s\n", key)
		}
	}
	if len(tiles) == 0 {
		fmt.Fprintln(w, "No tiles found.")
	}
}
