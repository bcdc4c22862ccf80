package catalogs

import (
	"context"
	"strings"
)

// Provider yields catalog entities. Implementations perform all blocking I/O;
// the resolution pass itself never calls back into a provider.
type Provider interface {
	ListEntities(ctx context.Context, entityType EntityType, filters SearchFilters) ([]Entity, error)
}

// ProviderFunc allows functions to implement Provider.
type ProviderFunc func(ctx context.Context, entityType EntityType, filters SearchFilters) ([]Entity, error)

// ListEntities implements Provider.
func (f ProviderFunc) ListEntities(ctx context.Context, entityType EntityType, filters SearchFilters) ([]Entity, error) {
	return f(ctx, entityType, filters)
}

// SearchFilters are opaque pass-through filters handed to the provider.
type SearchFilters struct {
	Search         string `json:"search,omitempty"`
	StatusVariance string `json:"status_variance,omitempty"`
	Event          string `json:"event,omitempty"`
	APriznak       string `json:"a_priznak,omitempty"`
}

// IsZero reports whether no filter is set.
func (f SearchFilters) IsZero() bool {
	return f == SearchFilters{}
}

// Matches applies the filters to an entity in memory. Providers backed by a
// query language translate the filters instead.
func (f SearchFilters) Matches(e Entity) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Name), needle) &&
			!strings.Contains(strings.ToLower(e.Description), needle) &&
			!strings.Contains(strings.ToLower(e.ID), needle) {
			return false
		}
	}
	if f.StatusVariance != "" && !strings.EqualFold(e.StatusVariance, f.StatusVariance) {
		return false
	}
	if f.Event != "" && !strings.EqualFold(e.Event, f.Event) {
		return false
	}
	if f.APriznak != "" && !strings.EqualFold(e.APriznak, f.APriznak) {
		return false
	}
	return true
}
