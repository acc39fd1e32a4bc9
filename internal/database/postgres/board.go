package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/logger"
	"github.com/osse101/BingoBot_Go/internal/repository"
)

// BoardRepository implements repository.BoardRepository
type BoardRepository struct {
	db *pgxpool.Pool
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *pgxpool.Pool) *BoardRepository {
	return &BoardRepository{db: db}
}

const tileColumns = `t.tile_id, t.board_id, t.position, t.name, t.description, t.completion_mode, t.requirements`

func scanTile(row pgx.Row, extra ...any) (*domain.Tile, error) {
	var tile domain.Tile
	var mode string
	var requirements []byte
	dest := append([]any{&tile.ID, &tile.BoardID, &tile.Position, &tile.Name, &tile.Description, &mode, &requirements}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	tile.CompletionMode = domain.TileCompletionMode(mode)
	if err := json.Unmarshal(requirements, &tile.Requirements); err != nil {
		return nil, fmt.Errorf("tile %d requirements: %w", tile.ID, err)
	}
	return &tile, nil
}

// FindTeamForPlayer returns the player's team on the most recently started board active at at
func (r *BoardRepository) FindTeamForPlayer(ctx context.Context, playerName string, at time.Time) (*domain.Team, error) {
	var team domain.Team
	err := r.db.QueryRow(ctx, `
		SELECT tm.team_id, tm.board_id, tm.name
		FROM team_members m
		JOIN teams tm ON tm.team_id = m.team_id
		JOIN boards b ON b.board_id = tm.board_id
		WHERE LOWER(m.player_name) = LOWER($1)
			AND b.starts_at <= $2 AND b.ends_at > $2
		ORDER BY b.starts_at DESC
		LIMIT 1`, strings.TrimSpace(playerName), at).Scan(&team.ID, &team.BoardID, &team.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return &team, nil
}

// ActiveTiles returns the team's board tiles when the board is active at at
func (r *BoardRepository) ActiveTiles(ctx context.Context, teamID int64, at time.Time) ([]domain.ActiveTile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+tileColumns+`, b.starts_at
		FROM teams tm
		JOIN boards b ON b.board_id = tm.board_id
		JOIN tiles t ON t.board_id = b.board_id
		WHERE tm.team_id = $1 AND b.starts_at <= $2 AND b.ends_at > $2
		ORDER BY t.position`, teamID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tiles: %w", err)
	}
	defer rows.Close()

	var out []domain.ActiveTile
	for rows.Next() {
		var startsAt time.Time
		tile, err := scanTile(rows, &startsAt)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ActiveTile{Tile: *tile, BoardStartsAt: startsAt})
	}
	return out, rows.Err()
}

// GetTile returns one tile
func (r *BoardRepository) GetTile(ctx context.Context, tileID int64) (*domain.Tile, error) {
	tile, err := scanTile(r.db.QueryRow(ctx, `SELECT `+tileColumns+` FROM tiles t WHERE t.tile_id = $1`, tileID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tile: %w", err)
	}
	return tile, nil
}

// GetBoard returns a board with its tiles in position order
func (r *BoardRepository) GetBoard(ctx context.Context, boardID int64) (*domain.Board, error) {
	var b domain.Board
	err := r.db.QueryRow(ctx, `SELECT board_id, name, starts_at, ends_at FROM boards WHERE board_id = $1`, boardID).
		Scan(&b.ID, &b.Name, &b.StartsAt, &b.EndsAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+tileColumns+` FROM tiles t WHERE t.board_id = $1 ORDER BY t.position`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		tile, err := scanTile(rows)
		if err != nil {
			return nil, err
		}
		b.Tiles = append(b.Tiles, *tile)
	}
	return &b, rows.Err()
}

// ImportBoard stores a board with its tiles and teams atomically
func (r *BoardRepository) ImportBoard(ctx context.Context, board *domain.Board, teams []repository.TeamImport) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer rollbackUnlessCommitted(ctx, tx)

	if err := tx.QueryRow(ctx, `
		INSERT INTO boards (name, starts_at, ends_at) VALUES ($1, $2, $3)
		RETURNING board_id`, board.Name, board.StartsAt, board.EndsAt).Scan(&board.ID); err != nil {
		return fmt.Errorf("failed to insert board: %w", err)
	}

	for i := range board.Tiles {
		tile := &board.Tiles[i]
		tile.BoardID = board.ID
		if tile.CompletionMode == "" {
			tile.CompletionMode = domain.CompletionAll
		}
		requirements, err := json.Marshal(tile.Requirements)
		if err != nil {
			return fmt.Errorf("tile %q requirements: %w", tile.Name, err)
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO tiles (board_id, position, name, description, completion_mode, requirements)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING tile_id`,
			board.ID, tile.Position, tile.Name, tile.Description, string(tile.CompletionMode), requirements).
			Scan(&tile.ID); err != nil {
			return fmt.Errorf("failed to insert tile %q: %w", tile.Name, err)
		}
	}

	for i := range teams {
		team := &teams[i].Team
		team.BoardID = board.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO teams (board_id, name) VALUES ($1, $2) RETURNING team_id`,
			board.ID, team.Name).Scan(&team.ID); err != nil {
			return fmt.Errorf("failed to insert team %q: %w", team.Name, err)
		}

		for j := range teams[i].Members {
			member := &teams[i].Members[j]
			member.TeamID = team.ID
			// Members link to an account when one already uses the name
			if _, err := tx.Exec(ctx, `
				INSERT INTO team_members (team_id, board_id, player_name, account_id)
				VALUES ($1, $2, $3, (SELECT account_id FROM accounts WHERE LOWER(game_name) = LOWER($3)))`,
				team.ID, board.ID, member.PlayerName); err != nil {
				return fmt.Errorf("failed to add %q to team %q: %w", member.PlayerName, team.Name, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

// rollbackUnlessCommitted is deferred after Begin; after a commit it is a no-op
func rollbackUnlessCommitted(ctx context.Context, tx pgx.Tx) {
	err := tx.Rollback(ctx)
	if err == nil || errors.Is(err, pgx.ErrTxClosed) {
		return
	}
	logger.FromContext(ctx).Error("Transaction rollback failed", "error", err)
}
