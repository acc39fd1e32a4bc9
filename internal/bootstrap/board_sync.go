package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/BingoBot_Go/internal/board"
	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/repository"
)

// ImportBoardFile loads, validates and stores the board definition at path.
// Nothing is written when the definition is invalid.
func ImportBoardFile(ctx context.Context, repo repository.BoardRepository, path string) (*domain.Board, error) {
	slog.Info(LogMsgImportingBoard, "path", path)

	loader, err := board.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadBoard, err)
	}

	def, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadBoard, err)
	}

	imported, err := board.Import(ctx, repo, def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedImportBoard, err)
	}

	members := 0
	for _, team := range def.Teams {
		members += len(team.Members)
	}
	slog.Info(LogMsgBoardImported,
		"board_id", imported.ID,
		"name", imported.Name,
		"tiles", len(imported.Tiles),
		"teams", len(def.Teams),
		"members", members)

	return imported, nil
}
