// Package application provides the application interface for driftmap
// commands and the HTTP server.
//
// Commands accept this interface rather than the concrete App type so they
// can be tested with a mock:
//
//	mock := &application.Mock{
//	    EngineFunc: func(context.Context) (*engine.Engine, error) {
//	        return testEngine, nil
//	    },
//	}
//	cmd := resolve.NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/driftmap/internal/metrics"
	"github.com/agentstation/driftmap/pkg/engine"
)

// Application provides what commands and the server need.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Engine returns the resolution engine over the configured source.
	// The backend is opened on first use and reused afterwards.
	Engine(ctx context.Context) (*engine.Engine, error)

	// Metrics returns the metrics recorder shared by the engine and server.
	Metrics() *metrics.Recorder

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
