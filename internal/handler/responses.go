package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/osse101/BingoBot_Go/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// encodeBuffers holds scratch buffers for response bodies
var encodeBuffers = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// respondJSON encodes payload before touching the response so an encoding
// failure can still be reported as a 500
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := encodeBuffers.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		encodeBuffers.Put(buf)
	}()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err, "status", status)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"` + ErrMsgGenericServerError + `"}` + "\n"))
		return
	}

	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response body", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps err to a status and user message and writes it
func respondServiceError(w http.ResponseWriter, err error) {
	status, message := mapServiceErrorToUserMessage(err)
	respondError(w, status, message)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgUnknownSourceError  = "Unknown event source"
	ErrMsgInvalidEventError   = "Event payload could not be understood"
	ErrMsgInvalidTokenError   = "Invalid webhook token"
	ErrMsgTeamNotFoundError   = "Team not found"
	ErrMsgTileNotFoundError   = "Tile not found"
	ErrMsgBoardNotFoundError  = "Board not found"
	ErrMsgInvalidInputError   = "Invalid request. Please check your inputs."
	ErrMsgBusyError           = "Progress is being updated by another event. Please retry."
	ErrMsgUnavailableError    = "Server is temporarily unavailable. Please try again later."
	ErrMsgAlreadyProcessedMsg = "Event already processed"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses.
// Anything unrecognized becomes a generic 500 so internals never leak.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrUnknownSource):
		return http.StatusNotFound, ErrMsgUnknownSourceError
	case errors.Is(err, domain.ErrInvalidEvent), errors.Is(err, domain.ErrUnsupportedEvent):
		return http.StatusBadRequest, ErrMsgInvalidEventError
	case errors.Is(err, domain.ErrInvalidWebhookToken):
		return http.StatusUnauthorized, ErrMsgInvalidTokenError
	case errors.Is(err, domain.ErrEventAlreadyProcessed):
		return http.StatusConflict, ErrMsgAlreadyProcessedMsg
	case errors.Is(err, domain.ErrTeamNotFound):
		return http.StatusNotFound, ErrMsgTeamNotFoundError
	case errors.Is(err, domain.ErrTileNotFound):
		return http.StatusNotFound, ErrMsgTileNotFoundError
	case errors.Is(err, domain.ErrBoardNotFound):
		return http.StatusNotFound, ErrMsgBoardNotFoundError
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidRequirement):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrWriteConflict):
		return http.StatusConflict, ErrMsgBusyError
	case errors.Is(err, domain.ErrRankingUnavailable):
		return http.StatusServiceUnavailable, ErrMsgUnavailableError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
