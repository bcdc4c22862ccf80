// Package sources opens the configured catalog and rule backend.
package sources

import (
	"context"

	"github.com/agentstation/driftmap/internal/sources/files"
	"github.com/agentstation/driftmap/internal/sources/sqlstore"
	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/engine"
	"github.com/agentstation/driftmap/pkg/errors"
	"github.com/agentstation/driftmap/pkg/exceptions"
)

// Drivers.
const (
	DriverFiles    = "files"
	DriverSQLite   = sqlstore.DriverSQLite
	DriverPostgres = sqlstore.DriverPostgres
)

// Config selects and locates a backend.
type Config struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	// Path is the catalog file for the files driver
	Path string `mapstructure:"path" yaml:"path"`
	// Rules is the rules file for the files driver
	Rules string `mapstructure:"rules" yaml:"rules"`
	// DSN is the connection string for SQL drivers
	DSN string `mapstructure:"dsn" yaml:"dsn"`
	// Migrate creates the SQL schema on open
	Migrate bool `mapstructure:"migrate" yaml:"migrate"`
}

// Backend bundles the providers of an opened source. Sink is nil for
// read-only backends.
type Backend struct {
	Catalog catalogs.Provider
	Rules   exceptions.RuleProvider
	Sink    engine.Sink

	close func() error
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// Open opens the backend described by cfg.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	switch cfg.Driver {
	case "", DriverFiles:
		if cfg.Path == "" {
			return nil, errors.NewConfigError("source", "source.path is required for the files driver", nil)
		}
		src, err := files.Load(cfg.Path, cfg.Rules)
		if err != nil {
			return nil, err
		}
		return &Backend{Catalog: src, Rules: src}, nil

	case DriverSQLite, DriverPostgres:
		if cfg.DSN == "" {
			return nil, errors.NewConfigError("source", "source.dsn is required for "+cfg.Driver, nil)
		}
		store, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := store.Migrate(ctx); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		return &Backend{Catalog: store, Rules: store, Sink: store, close: store.Close}, nil
	}
	return nil, errors.NewConfigError("source", "unknown driver "+cfg.Driver, errors.ErrInvalidInput)
}
