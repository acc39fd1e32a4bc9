package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/BingoBot_Go/internal/bingo"
	"github.com/osse101/BingoBot_Go/internal/domain"
	"github.com/osse101/BingoBot_Go/internal/logger"
	"github.com/osse101/BingoBot_Go/internal/worker"
)

// WebhookTokenParam is the query parameter carrying the shared webhook secret
const WebhookTokenParam = "token"

// Enqueuer accepts jobs without blocking the request
type Enqueuer interface {
	TryEnqueue(job worker.Job) bool
}

// WebhookRequest is the validated routing part of a webhook call
type WebhookRequest struct {
	Source string `validate:"required,source"`
}

// WebhookResponse acknowledges an accepted webhook
type WebhookResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
}

// WebhookHandler receives telemetry from game plugins
type WebhookHandler struct {
	service bingo.Service
	queue   Enqueuer
	token   string
	jobs    bingo.JobConfig
}

// NewWebhookHandler creates a webhook handler. An empty token disables the
// token check; jobs sets how queued events are retried.
func NewWebhookHandler(service bingo.Service, queue Enqueuer, token string, jobs bingo.JobConfig) *WebhookHandler {
	return &WebhookHandler{service: service, queue: queue, token: token, jobs: jobs}
}

// HandleWebhook adapts a source payload and queues it for progress evaluation
// @Summary Ingest a telemetry event
// @Description Accepts a plugin payload as JSON or multipart (payload_json field). Irrelevant payloads are acknowledged and dropped.
// @Tags webhook
// @Accept json,mpfd
// @Produce json
// @Param source path string true "Event source, e.g. dink"
// @Param token query string false "Webhook token"
// @Success 202 {object} WebhookResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /webhook/{source} [post]
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if !h.authorized(r) {
		log.Warn("Webhook rejected: invalid token")
		respondServiceError(w, domain.ErrInvalidWebhookToken)
		return
	}

	req := WebhookRequest{Source: strings.ToLower(chi.URLParam(r, "source"))}
	if err := ValidateRequest(w, r, &req, "Webhook"); err != nil {
		return
	}

	raw, err := ReadPayload(w, r)
	if err != nil {
		return
	}

	ev, err := h.service.Adapt(r.Context(), req.Source, raw)
	if err != nil {
		log.Warn("Webhook payload rejected", "source", req.Source, "error", err)
		respondServiceError(w, err)
		return
	}
	if ev == nil {
		respondJSON(w, http.StatusAccepted, WebhookResponse{Status: StatusIgnored})
		return
	}

	// The job runs after the response, so it only carries the request id over
	requestID := logger.GetRequestID(r.Context())
	process := bingo.NewProcessJob(h.service, *ev, h.jobs)
	job := worker.JobFunc(func(jobCtx context.Context) error {
		if requestID != "" {
			jobCtx = logger.WithRequestID(jobCtx, requestID)
		}
		return process.Process(jobCtx)
	})
	if !h.queue.TryEnqueue(job) {
		log.Warn("Webhook event dropped: queue full", "event_id", ev.EventID)
		w.Header().Set("Retry-After", "5")
		respondError(w, http.StatusServiceUnavailable, ErrMsgQueueFull)
		return
	}

	log.Debug("Webhook event queued", "event_id", ev.EventID, "event_type", ev.EventType)
	respondJSON(w, http.StatusAccepted, WebhookResponse{
		Status:    StatusQueued,
		EventID:   ev.EventID,
		EventType: string(ev.EventType),
	})
}

func (h *WebhookHandler) authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	given := r.URL.Query().Get(WebhookTokenParam)
	return subtle.ConstantTimeCompare([]byte(given), []byte(h.token)) == 1
}
