package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/osse101/BingoBot_Go/internal/eventlog"
	"github.com/osse101/BingoBot_Go/internal/logger"
)

// DefaultEventsPageSize applies when the feed is requested without a limit
const DefaultEventsPageSize = 50

// AdminEventsHandler serves the completion feed to organisers
type AdminEventsHandler struct {
	feed eventlog.Service
}

// NewAdminEventsHandler creates an admin events handler
func NewAdminEventsHandler(feed eventlog.Service) *AdminEventsHandler {
	return &AdminEventsHandler{feed: feed}
}

// EventsResponse wraps one page of the completion feed
type EventsResponse struct {
	Events []EventLogEntry `json:"events"`
}

// EventLogEntry is one logged completion
type EventLogEntry struct {
	ID        string      `json:"id"`
	EventType string      `json:"event_type"`
	TeamID    *int64      `json:"team_id,omitempty"`
	TileID    *int64      `json:"tile_id,omitempty"`
	Payload   interface{} `json:"payload"`
	CreatedAt string      `json:"created_at"`
}

// HandleGetEvents returns logged completions, newest first
// @Summary Completion feed
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param team_id query int false "Team id"
// @Param tile_id query int false "Tile id"
// @Param event_type query string false "Event type, e.g. tile.completed"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Param limit query int false "Page size (1-1000)"
// @Success 200 {object} EventsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/admin/events [get]
func (h *AdminEventsHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	filter, msg := parseEventFilter(r.URL.Query())
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	events, err := h.feed.Recent(r.Context(), filter)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to query event log", "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgGetEventsFailed)
		return
	}

	resp := EventsResponse{Events: make([]EventLogEntry, 0, len(events))}
	for _, evt := range events {
		resp.Events = append(resp.Events, EventLogEntry{
			ID:        evt.ID,
			EventType: evt.EventType,
			TeamID:    evt.TeamID,
			TileID:    evt.TileID,
			Payload:   evt.Payload,
			CreatedAt: evt.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// parseEventFilter returns a user-facing message for the first bad parameter
func parseEventFilter(q url.Values) (eventlog.EventFilter, string) {
	filter := eventlog.EventFilter{Limit: DefaultEventsPageSize}

	ids := []struct {
		param string
		dst   **int64
	}{
		{"team_id", &filter.TeamID},
		{"tile_id", &filter.TileID},
	}
	for _, id := range ids {
		raw := q.Get(id.param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			return filter, "Invalid " + id.param
		}
		*id.dst = &v
	}

	if kind := q.Get("event_type"); kind != "" {
		filter.EventType = &kind
	}

	bounds := []struct {
		param string
		dst   **time.Time
		msg   string
	}{
		{"since", &filter.Since, ErrMsgInvalidSince},
		{"until", &filter.Until, ErrMsgInvalidUntil},
	}
	for _, b := range bounds {
		raw := q.Get(b.param)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, b.msg
		}
		*b.dst = &ts
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > eventlog.MaxQueryLimit {
			return filter, ErrMsgInvalidLimit
		}
		filter.Limit = limit
	}
	return filter, ""
}
