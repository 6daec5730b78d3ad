package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
	"github.com/folio-labs/bindery-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the management API server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	authService      driving.AuthService
	channelService   driving.ChannelService
	reconcileService driving.ReconcileService

	// Infrastructure
	taskQueue driven.TaskQueue
	db        Pinger // PostgreSQL health check
	gateway   Pinger // channel gateway health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// ServerDeps holds the collaborators the server drives
type ServerDeps struct {
	AuthService      driving.AuthService
	ChannelService   driving.ChannelService
	ReconcileService driving.ReconcileService
	TaskQueue        driven.TaskQueue
	DB               Pinger
	Gateway          Pinger // can be nil
	Logger           *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		logger:           logger,
		authService:      deps.AuthService,
		channelService:   deps.ChannelService,
		reconcileService: deps.ReconcileService,
		taskQueue:        deps.TaskQueue,
		db:               deps.DB,
		gateway:          deps.Gateway,
	}

	s.setupRoutes()

	var handler http.Handler = s.router
	handler = NewLoggingMiddleware(logger).Handler(handler)
	handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)
	auth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Channel endpoints
	s.router.Handle("GET /api/v1/channels", auth(s.handleListChannels))
	s.router.Handle("POST /api/v1/channels", auth(s.handleCreateChannel))
	s.router.Handle("GET /api/v1/channels/{id}", auth(s.handleGetChannel))
	s.router.Handle("DELETE /api/v1/channels/{id}", auth(s.handleDeleteChannel))
	s.router.Handle("POST /api/v1/channels/{id}/enable", auth(s.handleEnableChannel))
	s.router.Handle("POST /api/v1/channels/{id}/disable", auth(s.handleDisableChannel))

	// Reconciliation endpoints
	s.router.Handle("POST /api/v1/channels/{id}/reconcile", auth(s.handleTriggerChannel))
	s.router.Handle("POST /api/v1/reconcile", auth(s.handleTriggerAll))
	s.router.Handle("GET /api/v1/channels/{id}/run", auth(s.handleGetRunState))
	s.router.Handle("GET /api/v1/runs", auth(s.handleListRunStates))

	// Queue endpoints
	s.router.Handle("GET /api/v1/queue/stats", auth(s.handleQueueStats))
	s.router.Handle("GET /api/v1/queue/tasks/{id}", auth(s.handleGetTask))
}

// Start starts the HTTP server. It blocks until the listener fails or
// the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
