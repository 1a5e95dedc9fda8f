// Package server provides the HTTP API for the decision engine.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/themis/pkg/audit"
	"mercator-hq/themis/pkg/config"
	"mercator-hq/themis/pkg/dsl/parser"
	"mercator-hq/themis/pkg/engine"
	"mercator-hq/themis/pkg/server/handlers"
	"mercator-hq/themis/pkg/server/middleware"
	"mercator-hq/themis/pkg/telemetry/metrics"
)

// Dependencies are the wired subsystems the HTTP API serves. Engine,
// Loader and Parser are required; the rest are optional and their routes
// or behaviors are disabled when nil.
type Dependencies struct {
	Engine *engine.Engine
	Loader handlers.RulesetLoader
	Parser *parser.Parser

	// AuditStore backs the audit query routes; nil leaves them unregistered.
	AuditStore audit.Storage

	// Recorder enqueues audit records for decisions; nil disables recording.
	Recorder handlers.DecisionRecorder

	// Collector serves /metrics and evaluation metrics; nil disables both.
	Collector *metrics.Collector
}

// Server is the HTTP API server for the decision engine.
type Server struct {
	config       *config.ServerConfig
	metricsCfg   *config.MetricsConfig
	deps         Dependencies
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the API server. The metrics config may be nil when no
// collector is wired.
func NewServer(cfg *config.ServerConfig, metricsCfg *config.MetricsConfig, deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:       cfg,
		metricsCfg:   metricsCfg,
		deps:         deps,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown. Shutdown is
// triggered by context cancellation, SIGINT/SIGTERM, or Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting decision API server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server, allowing in-flight requests
// to finish within the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("decision API server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/v1/rulesets", handlers.NewRulesetsHandler(s.deps.Parser, s.deps.Loader, s.deps.Engine))
	mux.Handle("/api/v1/rulesets/active", handlers.NewActiveRulesetHandler(s.deps.Engine))
	mux.Handle("/api/v1/evaluate", handlers.NewEvaluateHandler(s.deps.Engine, s.deps.Recorder, s.deps.Collector))
	mux.Handle("/api/v1/evaluate/batch", handlers.NewBatchEvaluateHandler(s.deps.Engine, s.deps.Recorder, s.deps.Collector))
	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/ready", handlers.NewReadyHandler(s.deps.Engine))

	// Audit routes exist only when an audit store is configured.
	if s.deps.AuditStore != nil {
		mux.Handle("/api/v1/audit/records", handlers.NewAuditRecordsHandler(s.deps.AuditStore))
		mux.Handle("/api/v1/audit/stats", handlers.NewAuditStatsHandler(s.deps.AuditStore))
	}

	if s.deps.Collector != nil && s.metricsCfg != nil && s.metricsCfg.Enabled {
		mux.Handle(s.metricsCfg.Path, s.deps.Collector.Handler())
	}

	// Request ID first so both the request log and any panic log carry it;
	// recovery innermost so a recovered 500 still shows up in the request log.
	var handler http.Handler = mux
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
