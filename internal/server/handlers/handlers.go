// Package handlers provides HTTP request handlers for the driftmap API.
package handlers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/driftmap/cmd/application"
	"github.com/agentstation/driftmap/internal/server/cache"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app          application.Application
	cache        *cache.Cache
	logger       *zerolog.Logger
	startTime    time.Time
	maxBodyBytes int64
}

// New creates a new Handlers instance.
func New(
	app application.Application,
	cache *cache.Cache,
	logger *zerolog.Logger,
	startTime time.Time,
	maxBodyBytes int64,
) *Handlers {
	return &Handlers{
		app:          app,
		cache:        cache,
		logger:       logger,
		startTime:    startTime,
		maxBodyBytes: maxBodyBytes,
	}
}
