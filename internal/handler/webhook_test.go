package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/BingoBot_Go/internal/bingo"
	"github.com/osse101/BingoBot_Go/internal/domain"
)

const (
	testWebhookToken = "s3cret"
	dinkLootBody     = `{"type":"LOOT","playerName":"Alice","extra":{"items":[]}}`
)

func lootEvent() *domain.UnifiedGameEvent {
	return &domain.UnifiedGameEvent{
		EventID:    "evt-1",
		EventType:  domain.GameEventLoot,
		PlayerName: "Alice",
		Timestamp:  time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC),
		Source:     "dink",
		Data:       domain.LootData{TotalValue: 100},
	}
}

func webhookRouter(h *WebhookHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/webhook/{source}", h.HandleWebhook)
	return r
}

func TestHandleWebhook_QueuesAdaptedEvent(t *testing.T) {
	svc := &MockBingoService{}
	queue := &recordingQueue{}
	ev := lootEvent()
	svc.On("Adapt", mock.Anything, "dink", []byte(dinkLootBody)).Return(ev, nil)
	svc.On("ProcessEvent", mock.Anything, *ev).Return(&bingo.ProcessSummary{EventID: ev.EventID}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook/DINK?token="+testWebhookToken, strings.NewReader(dinkLootBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	webhookRouter(NewWebhookHandler(svc, queue, testWebhookToken, bingo.JobConfig{})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"queued"`)
	assert.Contains(t, w.Body.String(), `"event_id":"evt-1"`)
	require.Len(t, queue.jobs, 1)

	require.NoError(t, queue.jobs[0].Process(context.Background()))
	svc.AssertExpectations(t)
}

func TestHandleWebhook_MultipartPayload(t *testing.T) {
	svc := &MockBingoService{}
	queue := &recordingQueue{}
	svc.On("Adapt", mock.Anything, "dink", []byte(dinkLootBody)).Return(lootEvent(), nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField(PayloadFormField, dinkLootBody))
	part, err := mw.CreateFormFile("file", "screenshot.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/webhook/dink?token="+testWebhookToken, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	webhookRouter(NewWebhookHandler(svc, queue, testWebhookToken, bingo.JobConfig{})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Len(t, queue.jobs, 1)
	svc.AssertExpectations(t)
}

func TestHandleWebhook_MultipartWithoutPayload(t *testing.T) {
	svc := &MockBingoService{}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/webhook/dink", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	webhookRouter(NewWebhookHandler(svc, &recordingQueue{}, "", bingo.JobConfig{})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrMsgPayloadMissing)
	svc.AssertNotCalled(t, "Adapt", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		adaptErr   error
		wantStatus int
	}{
		{"wrong token", "/webhook/dink?token=nope", dinkLootBody, nil, http.StatusUnauthorized},
		{"missing token", "/webhook/dink", dinkLootBody, nil, http.StatusUnauthorized},
		{"bad source name", "/webhook/d!nk?token=" + testWebhookToken, dinkLootBody, nil, http.StatusBadRequest},
		{"empty body", "/webhook/dink?token=" + testWebhookToken, "  ", nil, http.StatusBadRequest},
		{"unknown source", "/webhook/runelite?token=" + testWebhookToken, dinkLootBody, domain.ErrUnknownSource, http.StatusNotFound},
		{"invalid payload", "/webhook/dink?token=" + testWebhookToken, dinkLootBody, domain.ErrInvalidEvent, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockBingoService{}
			queue := &recordingQueue{}
			if tt.adaptErr != nil {
				svc.On("Adapt", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.adaptErr)
			}

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			webhookRouter(NewWebhookHandler(svc, queue, testWebhookToken, bingo.JobConfig{})).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, queue.jobs)
		})
	}
}

func TestHandleWebhook_IrrelevantPayloadAcknowledged(t *testing.T) {
	svc := &MockBingoService{}
	queue := &recordingQueue{}
	svc.On("Adapt", mock.Anything, "dink", mock.Anything).Return(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook/dink", strings.NewReader(`{"type":"LOGIN"}`))
	w := httptest.NewRecorder()
	webhookRouter(NewWebhookHandler(svc, queue, "", bingo.JobConfig{})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ignored"`)
	assert.Empty(t, queue.jobs)
}

func TestHandleWebhook_QueueFull(t *testing.T) {
	svc := &MockBingoService{}
	svc.On("Adapt", mock.Anything, "dink", mock.Anything).Return(lootEvent(), nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook/dink", strings.NewReader(dinkLootBody))
	w := httptest.NewRecorder()
	webhookRouter(NewWebhookHandler(svc, &recordingQueue{full: true}, "", bingo.JobConfig{})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), ErrMsgQueueFull)
}

func TestHandleWebhook_PayloadTooLarge(t *testing.T) {
	svc := &MockBingoService{}

	big := strings.Repeat("a", MaxWebhookBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/webhook/dink", strings.NewReader(big))
	w := httptest.NewRecorder()
	webhookRouter(NewWebhookHandler(svc, &recordingQueue{}, "", bingo.JobConfig{})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	svc.AssertNotCalled(t, "Adapt", mock.Anything, mock.Anything, mock.Anything)
}
