// Package server provides the HTTP REST API for the candidate screener.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/pipeline"
	"github.com/jonathan/candidate-screener/internal/server/middleware"
	"github.com/jonathan/candidate-screener/internal/types"
)

// Runner executes one screening batch. Implemented by pipeline.Orchestrator.
type Runner interface {
	Run(ctx context.Context, requisitionRaw []byte, sources []pipeline.CandidateSource) (*types.BatchResult, error)
}

// Archiver zips a finished run directory and returns the archive path.
type Archiver interface {
	ArchiveToFile(root string) (string, error)
}

// Config holds server configuration.
type Config struct {
	Addr        string
	JWTSecret   string
	DatabaseURL string
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	runner     Runner
	archiver   Archiver
	database   *db.DB
	jwtService *JWTService
	logger     *zap.Logger
}

// New creates a server around an already-constructed runner. A database is
// connected only when a URL is configured; an empty JWT secret disables
// authentication.
func New(cfg Config, runner Runner, archiver Archiver, logger *zap.Logger) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		runner:   runner,
		archiver: archiver,
		logger:   logger,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.database = database
	}

	if cfg.JWTSecret != "" {
		s.jwtService = NewJWTService(cfg.JWTSecret)
	} else {
		logger.Warn("no JWT secret configured; API authentication is disabled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/runs", s.handleCreateRun)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /health", s.handleHealth)

	var handler http.Handler = mux
	if s.jwtService != nil {
		handler = middleware.Auth(s.jwtService, []string{"/health"})(handler)
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second, // screening batches are slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until an interrupt or
// termination signal arrives, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.database != nil {
		s.database.Close()
	}
	return nil
}
