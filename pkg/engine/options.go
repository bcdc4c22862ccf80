package engine

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/driftmap/pkg/constants"
	"github.com/agentstation/driftmap/pkg/errors"
)

// Option is a function that configures an Engine.
type Option func(*Engine) error

// WithWorkers shards the per-entity pass across n goroutines.
// One worker runs the pass serially.
func WithWorkers(n int) Option {
	return func(e *Engine) error {
		if n < 1 || n > constants.MaxWorkers {
			return errors.NewValidationError("workers", n, "must be between 1 and 64")
		}
		e.workers = n
		return nil
	}
}

// WithSink configures where Apply writes canonical actions.
func WithSink(sink Sink) Option {
	return func(e *Engine) error {
		e.sink = sink
		return nil
	}
}

// WithObserver configures a receiver for batch and apply outcomes.
func WithObserver(o Observer) Option {
	return func(e *Engine) error {
		e.observer = o
		return nil
	}
}

// WithLogger configures the engine's logger. Loggers carried by the request
// context take precedence.
func WithLogger(logger *zerolog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithBatchIDFunc overrides batch ID generation.
func WithBatchIDFunc(fn func() string) Option {
	return func(e *Engine) error {
		if fn == nil {
			return errors.NewValidationError("batch_id_func", nil, "must not be nil")
		}
		e.newBatchID = fn
		return nil
	}
}
