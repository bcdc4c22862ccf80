// Package app provides the application context and dependency management
// for the driftmap CLI. It centralizes configuration, logging, the metrics
// recorder and the lazily opened backend.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/driftmap/cmd/application"
	"github.com/agentstation/driftmap/internal/cmd/output"
	"github.com/agentstation/driftmap/internal/metrics"
	"github.com/agentstation/driftmap/internal/sources"
	"github.com/agentstation/driftmap/pkg/engine"
	"github.com/agentstation/driftmap/pkg/errors"
)

var _ application.Application = (*App)(nil)

// App represents the driftmap application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config  *Config
	logger  *zerolog.Logger
	metrics *metrics.Recorder

	// backend and engine are opened on first use
	mu      sync.Mutex
	backend *sources.Backend
	engine  *engine.Engine
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment, .env files and the default
// config file; command flags are applied later in setupCommand.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		metrics: metrics.NewRecorder(),
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Metrics returns the recorder shared by the engine and the HTTP server.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// OutputFormat returns the configured output format, detecting one from the
// terminal when none is set.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Backend returns the configured backend, opening it on first use.
func (a *App) Backend(ctx context.Context) (*sources.Backend, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openBackend(ctx)
}

func (a *App) openBackend(ctx context.Context) (*sources.Backend, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	a.logger.Debug().
		Str("driver", a.config.Source.Driver).
		Str("path", a.config.Source.Path).
		Msg("Opening backend")

	backend, err := sources.Open(ctx, a.config.Source)
	if err != nil {
		return nil, err
	}
	a.backend = backend
	return backend, nil
}

// Engine returns the resolution engine over the configured backend,
// creating it on first use.
func (a *App) Engine(ctx context.Context) (*engine.Engine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.engine != nil {
		return a.engine, nil
	}
	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithWorkers(a.config.Workers),
		engine.WithObserver(a.metrics),
		engine.WithLogger(a.logger),
	}
	if backend.Sink != nil {
		opts = append(opts, engine.WithSink(backend.Sink))
	}
	eng, err := engine.New(backend.Catalog, backend.Rules, opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "engine", "", err)
	}
	a.engine = eng
	return eng, nil
}

// Shutdown releases the backend.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.backend == nil {
		return nil
	}
	err := a.backend.Close()
	a.backend = nil
	a.engine = nil
	return err
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithBackend sets a pre-opened backend (useful for testing).
func WithBackend(backend *sources.Backend) Option {
	return func(a *App) error {
		a.backend = backend
		return nil
	}
}
