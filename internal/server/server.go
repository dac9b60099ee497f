// Package server runs the HTTP API and its background workers
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/luct/reporting/internal/app/models"
	"github.com/luct/reporting/internal/bootstrap"
	"github.com/luct/reporting/internal/config"
)

// Server holds the state for the HTTP server.
type Server struct {
	config  *config.Config
	router  *gin.Engine
	storage *bootstrap.Storage
	deps    *bootstrap.Dependencies
	logger  zerolog.Logger
	http    *http.Server

	stopHub context.CancelFunc
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	storage, err := bootstrap.SetupStorage(context.Background(), cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, storage.Repos, lgr)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		config:  cfg,
		router:  bootstrap.SetupRouter(cfg, deps, lgr),
		storage: storage,
		deps:    deps,
		logger:  lgr,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	s.stopHub = stopHub
	go s.deps.Hub.Run(hubCtx)
	go s.auditActivity(hubCtx)

	if s.deps.Scheduler != nil {
		s.deps.Scheduler.Start()
	}

	s.http = &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Exports can take a while to render
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(osSignals)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = s.Shutdown(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// auditActivity writes every published report event to the log until ctx ends
func (s *Server) auditActivity(ctx context.Context) {
	events := make(chan models.ReportEvent, 64)
	s.deps.Hub.AddListener(events)
	defer s.deps.Hub.RemoveListener(events)

	audit := s.logger.With().Str("component", "audit").Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			audit.Info().
				Str("type", string(event.Type)).
				Int64("reportID", event.ReportID).
				Int64("actorID", event.ActorID).
				Time("at", event.At).
				Msg("Report activity")
		}
	}
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	var shutdownErr error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	if s.deps.Scheduler != nil {
		s.deps.Scheduler.Stop()
	}
	if s.stopHub != nil {
		s.stopHub()
	}

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Failed to close storage")
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}
