package handler

import (
	"net/http"

	"github.com/osse101/BingoBot_Go/internal/bingo"
	"github.com/osse101/BingoBot_Go/internal/logger"
)

// ProgressHandler serves tile progress reads
type ProgressHandler struct {
	service bingo.Service
}

// NewProgressHandler creates a progress handler
func NewProgressHandler(service bingo.Service) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// HandleGetTileProgress returns the participant view of a team's tile.
// Hidden requirements are redacted.
// @Summary Tile progress
// @Tags progress
// @Produce json
// @Param teamID path int true "Team id"
// @Param tileID path int true "Tile id"
// @Success 200 {object} bingo.TileProgressView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/teams/{teamID}/tiles/{tileID}/progress [get]
func (h *ProgressHandler) HandleGetTileProgress(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

// HandleAdminGetTileProgress returns a team's tile with full metadata
// @Summary Tile progress (admin)
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param teamID path int true "Team id"
// @Param tileID path int true "Tile id"
// @Success 200 {object} bingo.TileProgressView
// @Router /api/v1/admin/teams/{teamID}/tiles/{tileID}/progress [get]
func (h *ProgressHandler) HandleAdminGetTileProgress(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

func (h *ProgressHandler) serve(w http.ResponseWriter, r *http.Request, privileged bool) {
	teamID, ok := GetIDParam(w, r, "teamID")
	if !ok {
		return
	}
	tileID, ok := GetIDParam(w, r, "tileID")
	if !ok {
		return
	}

	view, err := h.service.GetTileProgress(r.Context(), teamID, tileID, privileged)
	if err != nil {
		logger.FromContext(r.Context()).Warn(ErrMsgGetProgressFailed, "team_id", teamID, "tile_id", tileID, "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}
