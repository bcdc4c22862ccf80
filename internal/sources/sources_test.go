package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/errors"
)

func TestOpenFiles(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte("entities:\n  - id: c1\n    type: class\n"), 0o600))

	b, err := Open(context.Background(), Config{Driver: DriverFiles, Path: catalog})
	require.NoError(t, err)
	assert.Nil(t, b.Sink)
	assert.NoError(t, b.Close())

	got, err := b.Catalog.ListEntities(context.Background(), catalogs.EntityTypeClass, catalogs.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestOpenSQLite(t *testing.T) {
	b, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:", Migrate: true})
	require.NoError(t, err)
	defer b.Close()

	assert.NotNil(t, b.Sink)
	got, err := b.Catalog.ListEntities(context.Background(), catalogs.EntityTypeClass, catalogs.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	tests := []Config{
		{Driver: DriverFiles},
		{Driver: DriverSQLite},
		{Driver: "oracle"},
	}
	for _, cfg := range tests {
		_, err := Open(ctx, cfg)
		var cfgErr *errors.ConfigError
		assert.True(t, errors.As(err, &cfgErr), "driver %q", cfg.Driver)
	}
}

func TestBackendCloseNil(t *testing.T) {
	var b *Backend
	assert.NoError(t, b.Close())
}
