// Package resolver turns parsed property diffs into actions and aggregates
// them into an entity-level action.
//
// Every entity is resolved twice from the same diff list. The canonical pass
// covers the full, unfiltered diffs and is the only input to bucketing and
// statistics. The display pass runs over a filtered subset and only labels
// the rendered entity. The two actions may legitimately differ.
package resolver

import (
	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/changelog"
	"github.com/agentstation/driftmap/pkg/exceptions"
)

// ResolvedDiff is a property diff with the action its rule lookup produced.
type ResolvedDiff struct {
	changelog.PropertyDiff `yaml:",inline"`
	Action                 exceptions.Action `json:"action" yaml:"action"`
}

// EntityResolution is the canonical resolution of an entity.
type EntityResolution struct {
	Entity catalogs.Entity
	Diffs  []ResolvedDiff
	Action exceptions.Action
}

// DisplayResolution is the transient, filtered view of an entity resolution.
type DisplayResolution struct {
	Entity catalogs.Entity
	Diffs  []ResolvedDiff
	Action exceptions.Action
}

// ResolveDiffs maps every diff to the action recorded for its property.
func ResolveDiffs(entityType catalogs.EntityType, diffs []changelog.PropertyDiff, lookup exceptions.Lookuper) []ResolvedDiff {
	out := make([]ResolvedDiff, len(diffs))
	for i, d := range diffs {
		out[i] = ResolvedDiff{PropertyDiff: d, Action: exceptions.Ignore}
		if lookup != nil {
			out[i].Action = lookup.Lookup(entityType, d.Property)
		}
	}
	return out
}

// OverallAction aggregates resolved diffs: NoAction when empty, Update when
// any diff is Update, otherwise Ignore.
func OverallAction(resolved []ResolvedDiff) exceptions.Action {
	if len(resolved) == 0 {
		return exceptions.NoAction
	}
	for _, d := range resolved {
		if d.Action == exceptions.Update {
			return exceptions.Update
		}
	}
	return exceptions.Ignore
}

// Canonical resolves the full diff list of an entity.
func Canonical(entity catalogs.Entity, diffs []changelog.PropertyDiff, lookup exceptions.Lookuper) EntityResolution {
	resolved := ResolveDiffs(entity.Type, diffs, lookup)
	return EntityResolution{
		Entity: entity,
		Diffs:  resolved,
		Action: OverallAction(resolved),
	}
}

// Display derives the display resolution from a canonical one. apply receives
// a copy of the canonical diffs; nil apply keeps them all.
func Display(canonical EntityResolution, apply func([]ResolvedDiff) []ResolvedDiff) DisplayResolution {
	diffs := append([]ResolvedDiff(nil), canonical.Diffs...)
	if apply != nil {
		diffs = apply(diffs)
	}
	if diffs == nil {
		diffs = []ResolvedDiff{}
	}
	return DisplayResolution{
		Entity: canonical.Entity,
		Diffs:  diffs,
		Action: OverallAction(diffs),
	}
}

// Representative returns the source and target of the first diff, the values
// shown in summary rows.
func Representative(diffs []ResolvedDiff) (source, target string) {
	if len(diffs) == 0 {
		return "", ""
	}
	return diffs[0].Source, diffs[0].Target
}

// Properties returns the property names of diffs in order.
func Properties(diffs []ResolvedDiff) []string {
	names := make([]string, len(diffs))
	for i, d := range diffs {
		names[i] = d.Property
	}
	return names
}
