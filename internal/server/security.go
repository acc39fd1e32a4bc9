package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/osse101/BingoBot_Go/internal/logger"
)

// AuthMiddleware validates the admin API key
func AuthMiddleware(apiKey string, trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providedKey := r.Header.Get(HeaderAPIKey)

			// An unset key locks the admin routes rather than opening them
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				ip := extractIP(r, trustedProxies)
				if detector != nil {
					detector.RecordFailedAuth(ip)
				}

				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"path", r.URL.Path,
					"has_key", providedKey != "",
					"ip", ip)

				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimitMiddleware limits request body size
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SuspiciousActivityDetector rate limits clients by IP and alerts on repeated
// authentication failures
type SuspiciousActivityDetector struct {
	mu             sync.Mutex
	limit          rate.Limit
	burst          int
	visitors       map[string]*visitor
	failedAuthByIP map[string]int
	lastResetTime  time.Time
	now            func() time.Time
}

// NewSuspiciousActivityDetector creates a detector with the default limits
func NewSuspiciousActivityDetector() *SuspiciousActivityDetector {
	return NewSuspiciousActivityDetectorWithLimit(DefaultRequestsPerSecond, DefaultRequestBurst)
}

// NewSuspiciousActivityDetectorWithLimit creates a detector allowing
// requestsPerSecond per IP with the given burst
func NewSuspiciousActivityDetectorWithLimit(requestsPerSecond float64, burst int) *SuspiciousActivityDetector {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultRequestBurst
	}
	return &SuspiciousActivityDetector{
		limit:          rate.Limit(requestsPerSecond),
		burst:          burst,
		visitors:       make(map[string]*visitor),
		failedAuthByIP: make(map[string]int),
		lastResetTime:  time.Now(),
		now:            time.Now,
	}
}

// RecordFailedAuth records a failed authentication attempt
func (s *SuspiciousActivityDetector) RecordFailedAuth(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetIfNeeded()
	s.failedAuthByIP[ip]++

	if s.failedAuthByIP[ip] >= FailedAuthAlertThreshold {
		slog.Warn(SecurityAlertFailedAuth,
			"ip", ip,
			"count", s.failedAuthByIP[ip])
	}
}

// RecordRequest takes a token from the IP's bucket and returns false when it is empty
func (s *SuspiciousActivityDetector) RecordRequest(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetIfNeeded()
	now := s.now()
	v, ok := s.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[ip] = v
	}
	v.lastSeen = now

	if !v.limiter.AllowN(now, 1) {
		slog.Warn(SecurityAlertHighRate, "ip", ip)
		return false
	}
	return true
}

// resetIfNeeded forgets idle visitors and failure counts once per window.
// Caller must hold the mutex.
func (s *SuspiciousActivityDetector) resetIfNeeded() {
	now := s.now()
	if now.Sub(s.lastResetTime) <= DetectorWindow {
		return
	}
	for ip, v := range s.visitors {
		if now.Sub(v.lastSeen) > DetectorWindow {
			delete(s.visitors, ip)
		}
	}
	s.failedAuthByIP = make(map[string]int)
	s.lastResetTime = now
}

// RateLimitMiddleware answers 429 once a client IP exhausts its bucket
func RateLimitMiddleware(trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !detector.RecordRequest(extractIP(r, trustedProxies)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractIP returns the client address. X-Forwarded-For is honoured only when
// the connection comes from a trusted proxy, and then only its last hop,
// which that proxy appended.
func extractIP(r *http.Request, trustedProxies []string) string {
	remote, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remote = r.RemoteAddr
	}
	if !slices.Contains(trustedProxies, remote) {
		return remote
	}

	forwarded := r.Header.Get(HeaderForwardedFor)
	if forwarded == "" {
		return remote
	}
	hops := strings.Split(forwarded, ",")
	last := strings.TrimSpace(hops[len(hops)-1])
	if net.ParseIP(last) == nil {
		return remote
	}
	return last
}

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderContentType, HeaderValueNoSniff)
			w.Header().Set(HeaderFrameOptions, HeaderValueSameOrigin)
			w.Header().Set(HeaderXSSProtection, HeaderValueXSSBlock)
			w.Header().Set(HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin)

			next.ServeHTTP(w, r)
		})
	}
}
