package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitMiddleware(t *testing.T) {
	detector := NewSuspiciousActivityDetectorWithLimit(1, 20)
	frozen := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	detector.now = func() time.Time { return frozen }
	middleware := RateLimitMiddleware(nil, detector)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ip := "192.168.1.100"
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = ip + ":1234"

	// The whole burst is available at once
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d failed with status %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429 Too Many Requests, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// Another client has its own bucket
	other := httptest.NewRequest("GET", "/test", nil)
	other.RemoteAddr = "192.168.1.101:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("expected other client to pass, got %d", rec.Code)
	}

	// Tokens refill over time
	frozen = frozen.Add(2 * time.Second)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected refilled bucket to pass, got %d", rec.Code)
	}
}

func TestSuspiciousActivityDetector_ForgetsIdleVisitors(t *testing.T) {
	detector := NewSuspiciousActivityDetector()
	now := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	detector.now = func() time.Time { return now }
	detector.lastResetTime = now

	detector.RecordRequest("10.0.0.1")
	detector.RecordFailedAuth("10.0.0.1")

	now = now.Add(DetectorWindow + time.Second)
	detector.RecordRequest("10.0.0.2")

	detector.mu.Lock()
	defer detector.mu.Unlock()
	if _, ok := detector.visitors["10.0.0.1"]; ok {
		t.Error("expected idle visitor to be forgotten")
	}
	if _, ok := detector.visitors["10.0.0.2"]; !ok {
		t.Error("expected active visitor to be tracked")
	}
	if len(detector.failedAuthByIP) != 0 {
		t.Errorf("expected failure counts to reset, got %v", detector.failedAuthByIP)
	}
}
