package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osse101/BingoBot_Go/internal/bingo"
	"github.com/osse101/BingoBot_Go/internal/database"
	"github.com/osse101/BingoBot_Go/internal/eventlog"
	"github.com/osse101/BingoBot_Go/internal/handler"
	"github.com/osse101/BingoBot_Go/internal/logger"
	"github.com/osse101/BingoBot_Go/internal/metrics"
	"github.com/osse101/BingoBot_Go/internal/worker"
)

// Queue accepts webhook jobs and reports its depth
type Queue interface {
	TryEnqueue(job worker.Job) bool
	QueueLength() int
}

// Config holds the HTTP surface settings
type Config struct {
	Port              int
	APIKey            string
	WebhookToken      string
	TrustedProxies    []string
	RequestsPerSecond float64
	RequestBurst      int

	// Jobs controls retries of queued webhook events
	Jobs bingo.JobConfig
}

// Server is the HTTP front of the ingestion engine
type Server struct {
	httpServer *http.Server
	detector   *SuspiciousActivityDetector
}

// NewServer creates a new Server instance
func NewServer(cfg Config, dbPool database.Pool, bingoService bingo.Service, eventlogService eventlog.Service, queue Queue, sources []string) *Server {
	detector := NewSuspiciousActivityDetectorWithLimit(cfg.RequestsPerSecond, cfg.RequestBurst)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           newRouter(cfg, detector, dbPool, bingoService, eventlogService, queue, sources),
			ReadHeaderTimeout: ReadHeaderTimeout,
			ReadTimeout:       ReadTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
		},
		detector: detector,
	}
}

func newRouter(cfg Config, detector *SuspiciousActivityDetector, dbPool database.Pool, bingoService bingo.Service, eventlogService eventlog.Service, queue Queue, sources []string) http.Handler {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(SecurityHeadersMiddleware())
	r.Use(loggingMiddleware)
	r.Use(RateLimitMiddleware(cfg.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(handler.MaxWebhookBodyBytes))
	r.Use(metrics.Middleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool, queue))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion(sources))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Plugin webhooks authenticate with a token in the query string
	webhookHandler := handler.NewWebhookHandler(bingoService, queue, cfg.WebhookToken, cfg.Jobs)
	r.Post("/webhook/{source}", webhookHandler.HandleWebhook)

	progressHandler := handler.NewProgressHandler(bingoService)
	adminEventsHandler := handler.NewAdminEventsHandler(eventlogService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/teams/{teamID}/tiles/{tileID}/progress", progressHandler.HandleGetTileProgress)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.APIKey, cfg.TrustedProxies, detector))

			r.Get("/events", adminEventsHandler.HandleGetEvents)
			r.Get("/teams/{teamID}/tiles/{tileID}/progress", progressHandler.HandleAdminGetTileProgress)
		})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		for _, path := range QuietPaths {
			if strings.HasPrefix(r.URL.Path, path) {
				next.ServeHTTP(w, r)
				return
			}
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"query", sanitizeQuery(r.URL.Query()),
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// sanitizeQuery encodes query parameters with secret values redacted
func sanitizeQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	clean := make(url.Values, len(q))
	for k, v := range q {
		clean[k] = v
		for _, secret := range SecretQueryParams {
			if strings.EqualFold(k, secret) {
				clean[k] = []string{RedactedValue}
				break
			}
		}
	}
	return clean.Encode()
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
