// Package exceptions holds the exception rules that override how detected
// property changes are resolved, and the immutable per-batch snapshot used to
// look them up.
package exceptions

import (
	"context"

	"github.com/agentstation/driftmap/pkg/catalogs"
)

// Rule states the intended action for a property of an entity type.
// Operators may record a rule under the raw property identifier
// (PropertyName) or under its display label (Description).
type Rule struct {
	EntityType   catalogs.EntityType `json:"entity_type" yaml:"entity_type"`
	PropertyName string              `json:"property_name" yaml:"property_name"`
	Description  string              `json:"description,omitempty" yaml:"description,omitempty"`
	Action       Action              `json:"action" yaml:"action"`
}

// RuleProvider yields exception rules for an entity type.
type RuleProvider interface {
	ListRules(ctx context.Context, entityType catalogs.EntityType) ([]Rule, error)
}

// RuleProviderFunc allows functions to implement RuleProvider.
type RuleProviderFunc func(ctx context.Context, entityType catalogs.EntityType) ([]Rule, error)

// ListRules implements RuleProvider.
func (f RuleProviderFunc) ListRules(ctx context.Context, entityType catalogs.EntityType) ([]Rule, error) {
	return f(ctx, entityType)
}
