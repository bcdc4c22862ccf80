package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/driftmap/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	path := filepath.Join(t.TempDir(), "driftmap.log")
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
		Fields: map[string]any{"component": "engine"},
	})

	logger.Info().Msg("hidden message")
	logger.Warn().Msg("visible message")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "hidden message")
	assert.Contains(t, string(content), "visible message")
	assert.Contains(t, string(content), `"component":"engine"`)
}

func TestContextHelpers(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithEntityType(ctx, "attribute")
	ctx = logging.WithBatch(ctx, "batch-1")
	ctx = logging.WithRequestID(ctx, "req-9")

	logging.FromContext(ctx).Info().Msg("resolved")

	assert.Equal(t, "req-9", logging.RequestID(ctx))
	require.Len(t, tl.Entries(), 1)
	entry, ok := tl.Find("resolved")
	require.True(t, ok, tl.Output())
	assert.Equal(t, "info", entry.Level())
	assert.Equal(t, "attribute", entry.Str("entity_type"))
	assert.Equal(t, "batch-1", entry.Str("batch_id"))
	assert.Equal(t, "req-9", entry.Str("request_id"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
}

func TestCaptureLoggingForTest(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)
	logging.Info().Str("entity_type", "class").Msg("captured")
	entry, ok := tl.Find("captured")
	require.True(t, ok)
	assert.Equal(t, "class", entry.Str("entity_type"))
}

func TestWithErrorNil(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, logging.WithError(ctx, nil))
}
