// Package application provides test doubles for the application interface.
package application

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/driftmap/internal/metrics"
	"github.com/agentstation/driftmap/pkg/engine"
)

// Mock implements application.Application with overridable functions.
// Nil function fields return zero values.
type Mock struct {
	EngineFunc       func(ctx context.Context) (*engine.Engine, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string

	once     sync.Once
	recorder *metrics.Recorder
}

// Engine returns the engine from EngineFunc.
func (m *Mock) Engine(ctx context.Context) (*engine.Engine, error) {
	if m.EngineFunc != nil {
		return m.EngineFunc(ctx)
	}
	return nil, nil
}

// Metrics returns a recorder private to the mock.
func (m *Mock) Metrics() *metrics.Recorder {
	m.once.Do(func() { m.recorder = metrics.NewRecorder() })
	return m.recorder
}

// Logger returns a no-op logger unless LoggerFunc is set.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns "table" unless OutputFormatFunc is set.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns "dev" unless VersionFunc is set.
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
