package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/osse101/BingoBot_Go/internal/database"
	"github.com/osse101/BingoBot_Go/internal/logger"
)

// ReadinessTimeout bounds the database ping of a readiness check
const ReadinessTimeout = 2 * time.Second

// HealthResponse represents the response for health endpoints
type HealthResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	QueueDepth *int   `json:"queue_depth,omitempty"`
}

// QueueReporter reports how many events wait for processing
type QueueReporter interface {
	QueueLength() int
}

// HandleHealthz provides a basic liveness check
// @Summary Liveness check
// @Description Returns OK if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// HandleReadyz reports whether the database is reachable. queue may be nil.
// @Summary Readiness check
// @Description Returns OK if the service is ready to accept events (database connected)
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func HandleReadyz(dbPool database.Pool, queue QueueReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), ReadinessTimeout)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error("Readiness check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "unavailable",
				Message: "database connection failed",
			})
			return
		}

		response := HealthResponse{Status: "ok"}
		if queue != nil {
			depth := queue.QueueLength()
			response.QueueDepth = &depth
		}
		respondJSON(w, http.StatusOK, response)
	}
}
