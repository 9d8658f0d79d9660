// Package web serves run results and single slug checks over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/ourkan95/Duplicate-Detector/internal/db"
	"github.com/ourkan95/Duplicate-Detector/internal/engine"
	"github.com/ourkan95/Duplicate-Detector/internal/metrics"
	"github.com/ourkan95/Duplicate-Detector/internal/web/handlers"
	"github.com/ourkan95/Duplicate-Detector/internal/web/middleware"
)

// Backends are the services the handlers read from
type Backends struct {
	Exporter *engine.Exporter
	Checker  *engine.SlugChecker
	Store    *db.Store        // optional
	Metrics  *metrics.Metrics // optional
}

// Server represents the web server
type Server struct {
	config     *Config
	backends   Backends
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance
func NewServer(config *Config, backends Backends) (*Server, error) {
	if backends.Exporter == nil || backends.Checker == nil {
		return nil, fmt.Errorf("exporter and slug checker are required")
	}

	server := &Server{
		config:   config,
		backends: backends,
	}
	server.setupRoutes()

	readTimeout := config.Server.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := config.Server.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 60 * time.Second
	}

	server.httpServer = &http.Server{
		Addr:         config.Server.Address(),
		Handler:      server.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// Handler returns the routed handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Convert config for handlers (to avoid import cycle)
	handlerConfig := &handlers.Config{}
	handlerConfig.Features.ExportEnabled = s.config.Features.ExportEnabled

	apiHandler := &handlers.APIHandler{Store: s.backends.Store, Config: handlerConfig}
	resultsHandler := &handlers.ResultsHandler{Exporter: s.backends.Exporter, Config: handlerConfig}
	exportHandler := &handlers.ExportHandler{Exporter: s.backends.Exporter, Config: handlerConfig}
	slugHandler := &handlers.SlugHandler{Checker: s.backends.Checker}

	s.router.HandleFunc("/healthz", apiHandler.Health).Methods("GET")
	if s.backends.Metrics != nil {
		s.router.Handle("/metrics", s.backends.Metrics.Handler()).Methods("GET")
	}

	api := s.router.PathPrefix("/api").Subrouter()

	// Results of the last run
	api.HandleFunc("/candidates", resultsHandler.ListCandidates).Methods("GET", "OPTIONS")
	api.HandleFunc("/mismatches", resultsHandler.ListMismatches).Methods("GET", "OPTIONS")
	if s.config.Features.ExportEnabled {
		api.HandleFunc("/export/{artifact}", exportHandler.Download).Methods("GET", "OPTIONS")
	}

	// Stored run history
	api.HandleFunc("/runs", apiHandler.ListRuns).Methods("GET", "OPTIONS")

	// Single lookups
	api.HandleFunc("/slug-check", slugHandler.Check).Methods("POST", "OPTIONS")

	// Apply middleware
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging(s.backends.Metrics))
	api.Use(middleware.Authentication(s.config.Server.APIKey))
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("starting server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
