package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/BingoBot_Go/internal/logger"
)

// MaxWebhookBodyBytes bounds a webhook body. Dink screenshots arrive as
// multipart file parts, so the limit covers one image plus the JSON.
const MaxWebhookBodyBytes = 8 << 20

// PayloadFormField is the multipart field carrying the JSON document
const PayloadFormField = "payload_json"

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// ValidateRequest validates a decoded request struct and writes a 400 on failure.
// If this function returns an error, the HTTP response has already been written.
func ValidateRequest(w http.ResponseWriter, r *http.Request, req interface{}, actionName string) error {
	if err := ValidateStruct(req); err != nil {
		logger.FromContext(r.Context()).Warn(fmt.Sprintf("%s request failed validation", actionName), "error", err)
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}
	return nil
}

// ReadPayload returns the JSON document of a webhook request. JSON bodies are
// returned as-is; multipart bodies yield the payload_json field and any file
// parts are ignored.
//
// If this function returns an error, the HTTP response has already been written.
func ReadPayload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	log := logger.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, MaxWebhookBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(MaxWebhookBodyBytes); err != nil {
			log.Warn("Failed to parse multipart webhook body", "error", err)
			writeBodyError(w, err)
			return nil, err
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}
		payload := r.FormValue(PayloadFormField)
		if strings.TrimSpace(payload) == "" {
			respondError(w, http.StatusBadRequest, ErrMsgPayloadMissing)
			return nil, errors.New(ErrMsgPayloadMissing)
		}
		return []byte(payload), nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Warn("Failed to read webhook body", "error", err)
		writeBodyError(w, err)
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return nil, errors.New(ErrMsgInvalidRequest)
	}
	return body, nil
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, ErrMsgPayloadTooLarge)
		return
	}
	respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
}

// GetIDParam parses a positive integer path parameter.
// If ok is false, the HTTP response has already been written and the handler should return.
func GetIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidPathParam, name))
		return 0, false
	}
	return id, true
}

// GetOptionalQueryParam retrieves an optional query parameter from the request.
//
// Example usage:
//
//	limit := GetOptionalQueryParam(r, "limit", "10")
func GetOptionalQueryParam(r *http.Request, paramName string, defaultValue string) string {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		return defaultValue
	}
	return value
}
