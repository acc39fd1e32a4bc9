// Package board loads bingo board definitions authored as YAML.
//
// A definition file names the board window, its tiles with their requirements
// and the teams with their members. Files are checked in three passes: the
// embedded JSON schema catches structural mistakes with precise locations,
// the tagged requirement codec builds typed requirements, and requirement
// validation applies the semantic rules (tier order, patterns, puzzle nesting).
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/repository"
	"github.com/osse101/BingoBot_Go/internal/requirement"
)

var (
	// ErrSchemaViolation marks a definition that does not match the board schema
	ErrSchemaViolation = errors.New("board definition does not match schema")
	// ErrInvalidDefinition marks a definition that is well formed but inconsistent
	ErrInvalidDefinition = errors.New("invalid board definition")
)

// Definition is a parsed board ready for import
type Definition struct {
	Board domain.Board
	Teams []repository.TeamImport
}

// TileKeys lists the requirement keys of one tile in authored order
type TileKeys struct {
	Position int
	TileName string
	Keys     []string
}

type fileDefinition struct {
	Name     string     `json:"name"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   time.Time  `json:"ends_at"`
	Tiles    []fileTile `json:"tiles"`
	Teams    []fileTeam `json:"teams"`
}

type fileTile struct {
	Name           string                    `json:"name"`
	Position       int                       `json:"position"`
	Description    string                    `json:"description"`
	CompletionMode domain.TileCompletionMode `json:"completion_mode"`
	Requirements   domain.RequirementList    `json:"requirements"`
}

type fileTeam struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Loader parses and validates board definitions
type Loader struct {
	schema *jsonschema.Schema
}

// NewLoader compiles the embedded board schema
func NewLoader() (*Loader, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Loader{schema: schema}, nil
}

// LoadFile reads and parses the definition at path
func (l *Loader) LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file %s: %w", path, err)
	}
	def, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse validates a YAML definition and converts it to domain values
func (l *Loader) Parse(data []byte) (*Definition, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	// Round-trip through JSON so the schema and the tagged requirement codec
	// see the same document
	asJSON, err := json.Marshal(normalize(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	var instance interface{}
	if err := json.Unmarshal(asJSON, &instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if err := l.schema.Validate(instance); err != nil {
		return nil, formatValidationError(err)
	}

	var file fileDefinition
	if err := json.Unmarshal(asJSON, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return file.toDefinition()
}

func (f fileDefinition) toDefinition() (*Definition, error) {
	if !f.EndsAt.After(f.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at must be after starts_at", ErrInvalidDefinition)
	}

	def := &Definition{
		Board: domain.Board{
			Name:     strings.TrimSpace(f.Name),
			StartsAt: f.StartsAt.UTC(),
			EndsAt:   f.EndsAt.UTC(),
		},
	}

	positions := make(map[int]string, len(f.Tiles))
	for i, t := range f.Tiles {
		tile, err := t.toTile(i)
		if err != nil {
			return nil, err
		}
		if other, taken := positions[tile.Position]; taken {
			return nil, fmt.Errorf("%w: tiles %q and %q share position %d", ErrInvalidDefinition, other, tile.Name, tile.Position)
		}
		positions[tile.Position] = tile.Name
		def.Board.Tiles = append(def.Board.Tiles, tile)
	}

	// A player belongs to at most one team per board
	memberOf := make(map[string]string)
	for _, t := range f.Teams {
		team := repository.TeamImport{Team: domain.Team{Name: strings.TrimSpace(t.Name)}}
		for _, member := range t.Members {
			name := strings.TrimSpace(member)
			key := strings.ToLower(name)
			if other, ok := memberOf[key]; ok {
				return nil, fmt.Errorf("%w: player %q is on teams %q and %q", ErrInvalidDefinition, name, other, team.Team.Name)
			}
			memberOf[key] = team.Team.Name
			team.Members = append(team.Members, domain.TeamMember{PlayerName: name})
		}
		def.Teams = append(def.Teams, team)
	}

	return def, nil
}

func (t fileTile) toTile(index int) (domain.Tile, error) {
	tile := domain.Tile{
		Position:       t.Position,
		Name:           strings.TrimSpace(t.Name),
		Description:    t.Description,
		CompletionMode: t.CompletionMode,
		Requirements:   t.Requirements,
	}
	if tile.Position == 0 {
		tile.Position = index + 1
	}
	if tile.CompletionMode == "" {
		tile.CompletionMode = domain.CompletionAll
	}

	seen := make(map[string]bool, len(tile.Requirements))
	for i, req := range tile.Requirements {
		if err := requirement.Validate(req); err != nil {
			return domain.Tile{}, fmt.Errorf("tile %q requirement %d: %w", tile.Name, i+1, err)
		}
		key := requirement.KeyOf(req)
		if seen[key] {
			return domain.Tile{}, fmt.Errorf("%w: tile %q lists %s twice", ErrInvalidDefinition, tile.Name, key)
		}
		seen[key] = true
	}
	return tile, nil
}

// Keys returns the requirement key of every tile, in tile order
func Keys(def *Definition) []TileKeys {
	out := make([]TileKeys, 0, len(def.Board.Tiles))
	for _, tile := range def.Board.Tiles {
		tk := TileKeys{Position: tile.Position, TileName: tile.Name}
		for _, req := range tile.Requirements {
			tk.Keys = append(tk.Keys, requirement.KeyOf(req))
		}
		out = append(out, tk)
	}
	return out
}

// Import stores a definition and returns the board with assigned ids
func Import(ctx context.Context, repo repository.BoardRepository, def *Definition) (*domain.Board, error) {
	board := def.Board
	board.Tiles = append([]domain.Tile(nil), def.Board.Tiles...)
	if err := repo.ImportBoard(ctx, &board, def.Teams); err != nil {
		return nil, fmt.Errorf("failed to import board %q: %w", board.Name, err)
	}
	return &board, nil
}

// normalize turns decoded YAML into values encoding/json accepts
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
