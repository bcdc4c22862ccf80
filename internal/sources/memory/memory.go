// Package memory provides an in-memory catalog, rule provider and apply sink.
package memory

import (
	"context"
	"sync"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/exceptions"
)

// Source holds entities and rules in memory. It is safe for concurrent use.
type Source struct {
	mu       sync.RWMutex
	entities []catalogs.Entity
	rules    []exceptions.Rule
	applied  map[key]exceptions.Action
}

type key struct {
	entityType catalogs.EntityType
	id         string
}

// New creates a source over copies of entities and rules.
func New(entities []catalogs.Entity, rules []exceptions.Rule) *Source {
	return &Source{
		entities: append([]catalogs.Entity(nil), entities...),
		rules:    append([]exceptions.Rule(nil), rules...),
		applied:  make(map[key]exceptions.Action),
	}
}

// ListEntities implements catalogs.Provider. Entities keep insertion order.
func (s *Source) ListEntities(ctx context.Context, entityType catalogs.EntityType, filters catalogs.SearchFilters) ([]catalogs.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []catalogs.Entity{}
	for _, e := range s.entities {
		if e.Type == entityType && (filters.IsZero() || filters.Matches(e)) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRules implements exceptions.RuleProvider.
func (s *Source) ListRules(ctx context.Context, entityType catalogs.EntityType) ([]exceptions.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []exceptions.Rule{}
	for _, r := range s.rules {
		if r.EntityType == entityType {
			out = append(out, r)
		}
	}
	return out, nil
}

// Apply implements engine.Sink.
func (s *Source) Apply(ctx context.Context, entityType catalogs.EntityType, id string, action exceptions.Action) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{entityType, id}
	if prev, ok := s.applied[k]; ok && prev == action {
		return false, nil
	}
	s.applied[k] = action
	return true, nil
}

// Applied returns the action last written for an entity.
func (s *Source) Applied(entityType catalogs.EntityType, id string) (exceptions.Action, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applied[key{entityType, id}]
	return a, ok
}

// AddEntities appends entities to the catalog.
func (s *Source) AddEntities(entities ...catalogs.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = append(s.entities, entities...)
}

// SetRules replaces the rule set. Batches already holding a snapshot are
// unaffected.
func (s *Source) SetRules(rules []exceptions.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append([]exceptions.Rule(nil), rules...)
}

// Len returns the number of entities held.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}
