package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lira-labs/lira-core/internal/core/ports/driving"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService     driving.AuthService
	sessionService  driving.SessionService
	groupService    driving.GroupService
	phaseService    driving.PhaseService
	analysisService driving.AnalysisService

	supportedSources func() []string
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	sessionService driving.SessionService,
	groupService driving.GroupService,
	phaseService driving.PhaseService,
	analysisService driving.AnalysisService,
	supportedSources func() []string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		authService:      authService,
		sessionService:   sessionService,
		groupService:     groupService,
		phaseService:     phaseService,
		analysisService:  analysisService,
		supportedSources: supportedSources,
	}

	logging := NewLoggingMiddleware(logger)
	recovery := NewRecoveryMiddleware(logger)
	cors := NewCORSMiddleware([]string{"*"})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(cors.Handler(s.router))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // generation calls are synchronous
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)
	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Source metadata
	s.router.Handle("GET /api/v1/sources", authed(s.handleListSources))

	// Session lifecycle
	s.router.Handle("POST /api/v1/sessions", authed(s.handleCreateSession))
	s.router.Handle("GET /api/v1/sessions", authed(s.handleListSessions))
	s.router.Handle("GET /api/v1/sessions/{id}", authed(s.handleGetSession))
	s.router.Handle("DELETE /api/v1/sessions/{id}", authed(s.handleDeleteSession))
	s.router.Handle("POST /api/v1/sessions/{id}/finalize", authed(s.handleFinalizeSession))

	// Group collection
	s.router.Handle("POST /api/v1/sessions/{id}/groups", authed(s.handleAddGroup))
	s.router.Handle("PATCH /api/v1/sessions/{id}/groups/{groupID}", authed(s.handleUpdateGroup))
	s.router.Handle("DELETE /api/v1/sessions/{id}/groups/{groupID}", authed(s.handleRemoveGroup))
	s.router.Handle("POST /api/v1/sessions/{id}/groups/{groupID}/topics/{topicID}/toggle", authed(s.handleToggleTopic))

	// Queries and filters
	s.router.Handle("PUT /api/v1/sessions/{id}/groups/{groupID}/queries/{source}", authed(s.handleSetQuery))
	s.router.Handle("PUT /api/v1/sessions/{id}/groups/{groupID}/filter", authed(s.handleSetFilter))
	s.router.Handle("DELETE /api/v1/sessions/{id}/groups/{groupID}/filter", authed(s.handleDisableFilter))

	// Generation (synchronous collaborator calls)
	s.router.Handle("POST /api/v1/sessions/{id}/propose", authed(s.handlePropose))
	s.router.Handle("POST /api/v1/sessions/{id}/groups/{groupID}/queries/{source}/generate", authed(s.handleGenerateQuery))
	s.router.Handle("POST /api/v1/sessions/{id}/groups/{groupID}/filter/generate", authed(s.handleGenerateFilter))

	// Query testing
	s.router.Handle("POST /api/v1/sessions/{id}/test-query/{source}", authed(s.handleTestQuery))

	// Analysis
	s.router.Handle("GET /api/v1/sessions/{id}/coverage", authed(s.handleCoverage))
	s.router.Handle("GET /api/v1/sessions/{id}/validation", authed(s.handleValidation))

	// Phase navigation
	s.router.Handle("GET /api/v1/sessions/{id}/phases", authed(s.handlePhaseStates))
	s.router.Handle("POST /api/v1/sessions/{id}/phases/advance", authed(s.handleAdvancePhase))
	s.router.Handle("POST /api/v1/sessions/{id}/phases/back", authed(s.handleBackPhase))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
