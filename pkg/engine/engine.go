// Package engine drives catalog resolution batches.
//
// A batch fetches the catalog and the rule snapshot once, then evaluates
// every entity: its change log is parsed, resolved canonically for bucketing
// and statistics, and filtered for display. Entities are grouped into the
// Ignore, Update and NoAction buckets, concatenated in that order and paged.
// Attributes are additionally grouped under their parent class, and paging
// then runs over the groups.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/constants"
	"github.com/agentstation/driftmap/pkg/errors"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/filter"
	"github.com/agentstation/driftmap/pkg/logging"
)

// Observer receives batch outcomes, typically to export metrics.
type Observer interface {
	ObserveBatch(entityType catalogs.EntityType, stats Statistics, dropped int, elapsed time.Duration)
	ObserveApply(entityType catalogs.EntityType, report ApplyReport)
	ObserveError(entityType catalogs.EntityType, operation string)
}

// Engine resolves catalogs fetched from its providers.
type Engine struct {
	catalog catalogs.Provider
	rules   exceptions.RuleProvider

	sink       Sink
	observer   Observer
	logger     *zerolog.Logger
	workers    int
	newBatchID func() string
}

// New creates an engine over a catalog provider and a rule provider.
func New(catalog catalogs.Provider, rules exceptions.RuleProvider, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, errors.NewValidationError("catalog", nil, "provider is required")
	}
	if rules == nil {
		return nil, errors.NewValidationError("rules", nil, "provider is required")
	}
	e := &Engine{
		catalog:    catalog,
		rules:      rules,
		workers:    constants.DefaultWorkers,
		newBatchID: uuid.NewString,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Workers returns the configured worker count.
func (e *Engine) Workers() int {
	return e.workers
}

// Run executes one batch: fetch entities and rules, then resolve and page.
// A provider failure is returned as the only result.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	req = req.Normalize()
	start := time.Now()

	batch, ctx, err := e.begin(ctx, req.EntityType, "resolve")
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)

	entities, store, err := e.fetch(ctx, req.EntityType, req.Search)
	if err != nil {
		return nil, err
	}

	evals, err := e.evaluateAll(ctx, entities, store, filter.New(req.Filters))
	if err != nil {
		return nil, err
	}
	res := assemble(evals, req)
	res.BatchID = batch

	elapsed := time.Since(start)
	if e.observer != nil {
		e.observer.ObserveBatch(req.EntityType, res.Statistics, res.Dropped, elapsed)
	}
	log.Info().
		Int("entities", len(entities)).
		Int("ignore", res.Statistics.IgnoreCount).
		Int("update", res.Statistics.UpdateCount).
		Int("no_action", res.Statistics.NoActionCount).
		Int("dropped_blocks", res.Dropped).
		Dur("elapsed", elapsed).
		Msg("Resolved catalog")
	return res, nil
}

// Properties returns the sorted property names seen across the catalog's
// unfiltered diffs.
func (e *Engine) Properties(ctx context.Context, entityType catalogs.EntityType, search catalogs.SearchFilters) ([]string, error) {
	res, err := e.Run(ctx, Request{EntityType: entityType, Search: search, PerPage: constants.MinPerPage})
	if err != nil {
		return nil, err
	}
	return res.AvailableProperties, nil
}

// Rules returns the rule table the next batch for entityType would use.
func (e *Engine) Rules(ctx context.Context, entityType catalogs.EntityType) (exceptions.Table, error) {
	if !entityType.Valid() {
		return exceptions.Table{}, errors.NewValidationError("entity_type", entityType, "unknown entity type")
	}
	store, err := exceptions.LoadSnapshot(ctx, e.rules, entityType)
	if err != nil {
		e.fail(entityType, "list_rules")
		return exceptions.Table{}, err
	}
	return store.Load(entityType), nil
}

// begin validates the entity type and attaches a batch-scoped logger.
func (e *Engine) begin(ctx context.Context, entityType catalogs.EntityType, operation string) (string, context.Context, error) {
	if !entityType.Valid() {
		return "", ctx, errors.NewValidationError("entity_type", entityType, "unknown entity type")
	}
	if e.logger != nil && logging.FromContext(ctx) == logging.Default() {
		ctx = logging.WithLogger(ctx, e.logger)
	}
	batch := e.newBatchID()
	ctx = logging.WithBatch(ctx, batch)
	ctx = logging.WithEntityType(ctx, entityType.String())
	ctx = logging.WithOperation(ctx, operation)
	return batch, ctx, nil
}

// fetch performs all blocking I/O of a batch before the pass begins.
func (e *Engine) fetch(ctx context.Context, entityType catalogs.EntityType, search catalogs.SearchFilters) ([]catalogs.Entity, *exceptions.Store, error) {
	entities, err := e.catalog.ListEntities(ctx, entityType, search)
	if err != nil {
		e.fail(entityType, "list_entities")
		if !errors.IsProviderUnavailable(err) {
			err = errors.WrapProvider("catalog", "list_entities", err)
		}
		logging.FromContext(ctx).Error().Err(err).Msg("Failed to list entities")
		return nil, nil, err
	}

	store, err := exceptions.LoadSnapshot(ctx, e.rules, entityType)
	if err != nil {
		e.fail(entityType, "list_rules")
		logging.FromContext(ctx).Error().Err(err).Msg("Failed to load exception rules")
		return nil, nil, err
	}
	return entities, store, nil
}

// evaluateAll evaluates entities, sharding across workers when configured.
// Results are stored by catalog index so the outcome matches a serial pass.
func (e *Engine) evaluateAll(ctx context.Context, entities []catalogs.Entity, rules exceptions.Lookuper, pipe filter.Filter) ([]evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]evaluation, len(entities))
	if e.workers <= 1 || len(entities) < 2 {
		for i, ent := range entities {
			out[i] = evaluate(ent, rules, pipe)
		}
		return out, nil
	}

	workers := min(e.workers, len(entities))
	chunk := (len(entities) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(entities); start += chunk {
		end := min(start+chunk, len(entities))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = evaluate(entities[i], rules, pipe)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) fail(entityType catalogs.EntityType, operation string) {
	if e.observer != nil {
		e.observer.ObserveError(entityType, operation)
	}
}
