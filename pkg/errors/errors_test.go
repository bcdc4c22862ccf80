package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/driftmap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "entity",
			ID:       "attr-1",
		}
		assert.Equal(t, "entity with ID attr-1 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("entity", "x")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("entity_type", "table", "unknown entity type")
		assert.Equal(t, "validation failed for field entity_type: unknown entity type", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "bad request"}
		assert.Equal(t, "validation failed: bad request", err.Error())
	})
}

func TestProviderError(t *testing.T) {
	base := errors.New("connection refused")
	err := pkgerrors.NewProviderError("postgres", "list_rules", base)

	assert.Contains(t, err.Error(), "postgres")
	assert.Contains(t, err.Error(), "list_rules")
	assert.True(t, pkgerrors.IsProviderUnavailable(err))
	assert.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("resolve: %w", err)
	var pe *pkgerrors.ProviderError
	require.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, "list_rules", pe.Operation)

	bare := &pkgerrors.ProviderError{Provider: "files", Err: base}
	assert.Equal(t, "provider files failed: connection refused", bare.Error())
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("source", "unknown driver \"mongo\"", nil)
	assert.Contains(t, err.Error(), "source")
	assert.Contains(t, err.Error(), "mongo")
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestRuleError(t *testing.T) {
	err := pkgerrors.NewRuleError("attribute", "", "no property name or description")
	assert.Equal(t, "exception rule attribute/<unnamed>: no property name or description", err.Error())
	assert.True(t, pkgerrors.IsValidationError(fmt.Errorf("load: %w", err)))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestParseError(t *testing.T) {
	t.Run("with file", func(t *testing.T) {
		err := pkgerrors.NewParseError("yaml", "catalog.yaml", "mapping expected", nil)
		assert.Equal(t, "parse error in yaml file catalog.yaml: mapping expected", err.Error())
	})

	t.Run("without file", func(t *testing.T) {
		err := pkgerrors.NewParseError("toml", "", "bad key", nil)
		assert.Equal(t, "toml parse error: bad key", err.Error())
	})
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.NewIOError("read", "/tmp/rules.toml", base)
	assert.Contains(t, err.Error(), "read")
	assert.Contains(t, err.Error(), "/tmp/rules.toml")
	assert.Equal(t, base, err.Unwrap())
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.NewResourceError("apply", "entity", "cls-1", errors.New("locked"))
	assert.Equal(t, "failed to apply entity cls-1: locked", err.Error())

	noID := pkgerrors.NewResourceError("load", "config", "", errors.New("missing"))
	assert.Equal(t, "failed to load config: missing", noID.Error())
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	assert.NoError(t, pkgerrors.WrapParse("yaml", "x", nil))
	assert.NoError(t, pkgerrors.WrapResource("load", "rules", "", nil))
	assert.NoError(t, pkgerrors.WrapProvider("files", "list", nil))

	err := pkgerrors.WrapProvider("sqlite3", "list_entities", errors.New("db closed"))
	assert.True(t, pkgerrors.IsProviderUnavailable(err))
}
