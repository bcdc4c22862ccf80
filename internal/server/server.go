// Package server provides the HTTP API for driftmap resolutions.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/driftmap/cmd/application"
	"github.com/agentstation/driftmap/internal/server/cache"
	"github.com/agentstation/driftmap/pkg/constants"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app       application.Application
	cache     *cache.Cache
	logger    *zerolog.Logger
	config    Config
	startTime time.Time
}

// New creates a server. The engine is opened lazily by the first request.
func New(app application.Application, cfg Config) (*Server, error) {
	if app == nil {
		return nil, fmt.Errorf("server: application is required")
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	logger := app.Logger()
	logger.Debug().
		Dur("cache_ttl", cfg.CacheTTL).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("Creating server")

	return &Server{
		app:       app,
		cache:     cache.New(cfg.CacheTTL, constants.CacheCleanupInterval),
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
	}, nil
}

// Handler returns the router with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer builds an http.Server bound to the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Shutdown drops cached pages.
func (s *Server) Shutdown(_ context.Context) error {
	s.cache.Clear()
	s.logger.Info().Msg("Server state released")
	return nil
}

// Cache returns the server's response cache.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
