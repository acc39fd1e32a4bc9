package repository

import (
	"context"
	"time"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// BoardRepository reads and stores boards, tiles and teams
type BoardRepository interface {
	// FindTeamForPlayer returns the team a player belongs to on a board active
	// at the given time. It returns domain.ErrTeamNotFound when there is none.
	FindTeamForPlayer(ctx context.Context, playerName string, at time.Time) (*domain.Team, error)

	// ActiveTiles returns the tiles of the team's board when its window contains at
	ActiveTiles(ctx context.Context, teamID int64, at time.Time) ([]domain.ActiveTile, error)

	// GetTile returns a tile with its requirements
	GetTile(ctx context.Context, tileID int64) (*domain.Tile, error)

	// GetBoard returns a board with its tiles
	GetBoard(ctx context.Context, boardID int64) (*domain.Board, error)

	// ImportBoard stores a board, its tiles and teams in one transaction and
	// assigns ids to them.
	ImportBoard(ctx context.Context, board *domain.Board, teams []TeamImport) error
}

// TeamImport is a team with its members as authored in a board file
type TeamImport struct {
	Team    domain.Team
	Members []domain.TeamMember
}
