package engine

import (
	"context"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/errors"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/filter"
	"github.com/agentstation/driftmap/pkg/logging"
)

// Sink persists an entity's canonical action. Implementations perform one
// conditional write and report whether the stored value changed.
type Sink interface {
	Apply(ctx context.Context, entityType catalogs.EntityType, id string, action exceptions.Action) (bool, error)
}

// SinkFunc allows functions to implement Sink.
type SinkFunc func(ctx context.Context, entityType catalogs.EntityType, id string, action exceptions.Action) (bool, error)

// Apply implements Sink.
func (f SinkFunc) Apply(ctx context.Context, entityType catalogs.EntityType, id string, action exceptions.Action) (bool, error) {
	return f(ctx, entityType, id, action)
}

// ApplyReport summarizes an Apply batch.
type ApplyReport struct {
	BatchID    string     `json:"batch_id" yaml:"batch_id"`
	Evaluated  int        `json:"evaluated" yaml:"evaluated"`
	Changed    int        `json:"changed" yaml:"changed"`
	Unchanged  int        `json:"unchanged" yaml:"unchanged"`
	Failed     int        `json:"failed" yaml:"failed"`
	Statistics Statistics `json:"statistics" yaml:"statistics"`
}

// Apply resolves the catalog canonically and writes each entity's canonical
// action through the sink. A failed write is counted and the batch continues;
// cancellation aborts it and returns the partial report with the error.
func (e *Engine) Apply(ctx context.Context, entityType catalogs.EntityType, search catalogs.SearchFilters) (*ApplyReport, error) {
	if e.sink == nil {
		return nil, errors.NewConfigError("engine", "no apply sink configured", errors.ErrReadOnly)
	}
	batch, ctx, err := e.begin(ctx, entityType, "apply")
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)

	entities, store, err := e.fetch(ctx, entityType, search)
	if err != nil {
		return nil, err
	}
	evals, err := e.evaluateAll(ctx, entities, store, filter.Identity)
	if err != nil {
		return nil, err
	}

	report := &ApplyReport{BatchID: batch}
	for _, ev := range evals {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		ent := ev.canonical.Entity
		report.Evaluated++
		report.Statistics.add(ev.canonical.Action)

		changed, err := e.sink.Apply(ctx, entityType, ent.ID, ev.canonical.Action)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			log.Warn().Err(err).Str("entity_id", ent.ID).Msg("Failed to apply resolution")
		case changed:
			report.Changed++
		default:
			report.Unchanged++
		}
	}

	if e.observer != nil {
		e.observer.ObserveApply(entityType, *report)
	}
	log.Info().
		Int("evaluated", report.Evaluated).
		Int("changed", report.Changed).
		Int("failed", report.Failed).
		Msg("Applied resolutions")
	return report, nil
}
