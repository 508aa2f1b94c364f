// Package api serves the behavior read API for dashboards.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	server  *http.Server
	logger  *slog.Logger
	handler *BehaviorHandler
	health  *observability.HealthRegistry
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "127.0.0.1:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server. health may be nil.
func NewServer(cfg ServerConfig, handler *BehaviorHandler, health *observability.HealthRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:  chi.NewRouter(),
		logger:  logger,
		handler: handler,
		health:  health,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlation)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1/users/{userID}", func(r chi.Router) {
		r.Get("/baseline", s.handler.GetBaseline)
		r.Put("/baseline", s.handler.PutBaseline)
		r.Post("/sessions", s.handler.LogSession)
		r.Get("/periods/{date}", s.handler.GetPeriodAggregate)
		r.Get("/periods/{date}/advice", s.handler.GetPeriodAdvice)
		r.Get("/progress", s.handler.GetProgress)

		r.Route("/days/{date}", func(r chi.Router) {
			r.Get("/sessions", s.handler.ListSessions)
			r.Get("/aggregate", s.handler.GetAggregate)
			r.Get("/advice", s.handler.GetAdvice)
			r.Get("/digest", s.handler.GetDigest)
		})
	})
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	s.health.Handler().ServeHTTP(w, r)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting behavior API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down behavior API server")
	return s.server.Shutdown(ctx)
}

// correlation carries the chi request id into the logging context.
func correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-ID")
		if id == "" {
			id = middleware.GetReqID(r.Context())
		}
		ctx := observability.NewRequestContext(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, apiErr *APIError, message string) {
	body := *apiErr
	if message != "" {
		body.Message = message
	}
	writeJSON(w, body.Status, body)
}

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Invalid request",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "Resource not found",
	}
	ErrSetupIncomplete = &APIError{
		Status:  http.StatusConflict,
		Code:    "setup_incomplete",
		Message: "Baseline setup is incomplete",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "Internal server error",
	}
)
