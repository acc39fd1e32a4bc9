package domain

import "time"

// TileCompletionMode states how a tile's requirements combine into tile completion
type TileCompletionMode string

const (
	// CompletionAll requires every requirement on the tile
	CompletionAll TileCompletionMode = "all"
	// CompletionAny requires any single requirement on the tile
	CompletionAny TileCompletionMode = "any"
)

// Board is a bingo event with a fixed window during which events count
type Board struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Tiles    []Tile    `json:"tiles,omitempty"`
}

// Active reports whether t falls inside the board window. The end is exclusive.
func (b Board) Active(t time.Time) bool {
	return !t.Before(b.StartsAt) && t.Before(b.EndsAt)
}

// Tile is one square on a board
type Tile struct {
	ID             int64              `json:"id"`
	BoardID        int64              `json:"board_id"`
	Position       int                `json:"position"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	CompletionMode TileCompletionMode `json:"completion_mode"`
	Requirements   RequirementList    `json:"requirements"`
}

// ActiveTile is a tile together with the window of the board it belongs to
type ActiveTile struct {
	Tile
	BoardStartsAt time.Time `json:"board_starts_at"`
}

// Team is a group of players competing on a board
type Team struct {
	ID      int64  `json:"id"`
	BoardID int64  `json:"board_id"`
	Name    string `json:"name"`
}

// TeamMember links a player to a team
type TeamMember struct {
	TeamID     int64  `json:"team_id"`
	PlayerName string `json:"player_name"`
	AccountID  string `json:"account_id,omitempty"`
}

// TileCompletion records when a team finished a tile
type TileCompletion struct {
	TeamID      int64     `json:"team_id"`
	TileID      int64     `json:"tile_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// PlayerContext identifies who caused an event and on whose behalf progress is recorded
type PlayerContext struct {
	TeamID         int64     `json:"team_id"`
	AccountID      string    `json:"account_id,omitempty"`
	PlayerName     string    `json:"player_name"`
	EventStartTime time.Time `json:"event_start_time"`
}

// Account is an internal player identity mapped from a game name
type Account struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	GameName    string    `json:"game_name"`
	CreatedAt   time.Time `json:"created_at"`
}
