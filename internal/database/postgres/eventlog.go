package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/BingoBot_Go/internal/eventlog"
)

// EventLogRepository stores the completion feed in event_log
type EventLogRepository struct {
	db *pgxpool.Pool
}

// NewEventLogRepository creates a PostgreSQL event log repository
func NewEventLogRepository(db *pgxpool.Pool) *EventLogRepository {
	return &EventLogRepository{db: db}
}

// Append inserts one completion
func (r *EventLogRepository) Append(ctx context.Context, entry eventlog.Event) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("encode event %s payload: %w", entry.ID, err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO event_log (id, event_type, team_id, tile_id, payload, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)`,
		entry.ID, entry.EventType, entry.TeamID, entry.TileID, payload, entry.CreatedAt)
	return err
}

// eventLogWhere renders the filter as a WHERE clause with positional args
func eventLogWhere(filter eventlog.EventFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(expr string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}

	if filter.TeamID != nil {
		add("team_id = $%d", *filter.TeamID)
	}
	if filter.TileID != nil {
		add("tile_id = $%d", *filter.TileID)
	}
	if filter.EventType != nil {
		add("event_type = $%d", *filter.EventType)
	}
	if filter.Since != nil {
		add("created_at >= $%d", *filter.Since)
	}
	if filter.Until != nil {
		add("created_at <= $%d", *filter.Until)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Query returns matching events, newest first
func (r *EventLogRepository) Query(ctx context.Context, filter eventlog.EventFilter) ([]eventlog.Event, error) {
	where, args := eventLogWhere(filter)
	sql := `SELECT id::text, event_type, team_id, tile_id, payload, created_at FROM event_log` +
		where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query event log: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (eventlog.Event, error) {
		var e eventlog.Event
		var payload []byte
		if err := row.Scan(&e.ID, &e.EventType, &e.TeamID, &e.TileID, &payload, &e.CreatedAt); err != nil {
			return e, err
		}
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return e, fmt.Errorf("event %s payload: %w", e.ID, err)
		}
		return e, nil
	})
}

// PruneBefore deletes events logged before cutoff
func (r *EventLogRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM event_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune event log: %w", err)
	}
	return tag.RowsAffected(), nil
}
