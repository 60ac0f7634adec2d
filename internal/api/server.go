package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/cache"
	"github.com/rankonai/seoscope/internal/clock/system"
	"github.com/rankonai/seoscope/internal/metrics"
	"github.com/rankonai/seoscope/internal/tasks"
	"github.com/rankonai/seoscope/internal/workflow"
)

// Version is reported by the root and health endpoints.
const Version = "2.0.0"

const (
	defaultRequestTimeout = 60 * time.Second
	historyTimeout        = 3 * time.Second
	defaultJobLimit       = 50
	maxJobLimit           = 500
)

// Dispatcher hands an accepted job to execution capacity.
type Dispatcher interface {
	Dispatch(ctx context.Context, item workflow.QueueItem) error
}

// Summarizer generates the on-demand AI summary for a previously
// produced overview report.
type Summarizer interface {
	Execute(ctx context.Context, in tasks.Input) (map[string]any, error)
}

// Config carries the server tunables.
type Config struct {
	RequestTimeout time.Duration
	WorkerMode     string
}

// Server wires HTTP handlers to the workflow service and dispatcher.
type Server struct {
	router     chi.Router
	service    *workflow.Service
	dispatcher Dispatcher
	history    workflow.HistoryStore
	cache      cache.Store
	summarizer Summarizer
	clock      workflow.Clock
	cfg        Config
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes. The history
// store and summarizer may be nil; their routes answer 503 until they
// are configured.
func NewServer(
	service *workflow.Service,
	disp Dispatcher,
	history workflow.HistoryStore,
	cacheStore cache.Store,
	summarizer Summarizer,
	clk workflow.Clock,
	cfg Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = system.New()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.WorkerMode == "" {
		cfg.WorkerMode = "ready"
	}

	s := &Server{
		service:    service,
		dispatcher: disp,
		history:    history,
		cache:      cacheStore,
		summarizer: summarizer,
		clock:      clk,
		cfg:        cfg,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(chimw.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(cfg.RequestTimeout))

	r.Get("/", s.root)
	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/workflow", func(r chi.Router) {
		r.Post("/start", s.startWorkflow)
		r.Get("/jobs", s.listJobs)
		r.Get("/{job_id}/status", s.getStatus)
		r.Get("/{job_id}/result", s.getResult)
		r.Delete("/{job_id}", s.cancelJob)
	})
	r.Post("/ai-summary", s.aiSummary)
	r.Delete("/cache", s.clearCache)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"name":     "seoscope",
		"version":  Version,
		"health":   "/health",
		"workflow": "/workflow/start",
	})
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Cache     string    `json:"cache"`
	Worker    string    `json:"worker"`
}

// health reports service liveness plus cache connectivity, for load
// balancers and monitoring.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	cacheStatus := "connected"
	if err := s.cache.Ping(r.Context()); err != nil {
		cacheStatus = "disconnected"
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.clock.Now().UTC(),
		Version:   Version,
		Cache:     cacheStatus,
		Worker:    s.cfg.WorkerMode,
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", requestIDFrom(r.Context())),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestIDFrom(r.Context())),
				)
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func rawJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}
