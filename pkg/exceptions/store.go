package exceptions

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/errors"
	"github.com/agentstation/driftmap/pkg/logging"
)

// Lookuper resolves the action recorded for a property.
type Lookuper interface {
	Lookup(entityType catalogs.EntityType, property string) Action
}

// Store is an immutable snapshot of exception rules, loaded once per
// resolution batch. It is safe for concurrent reads.
type Store struct {
	tables map[catalogs.EntityType]Table
	// skipped counts rule rows rejected at build time
	skipped int
}

// Table is the immutable rule table of one entity type.
type Table struct {
	byName        map[string]Action
	byDescription map[string]Action
}

// NewStore builds a snapshot from rule rows. Rows with an empty key or an
// action other than Ignore/Update are skipped. When several rows share a
// key, Update wins.
func NewStore(rules []Rule) *Store {
	s := &Store{tables: make(map[catalogs.EntityType]Table)}
	for _, r := range rules {
		if !r.Action.ValidForRule() {
			s.skip(errors.NewRuleError(r.EntityType.String(), r.PropertyName,
				fmt.Sprintf("action %d is not ignore or update", r.Action.Code())))
			continue
		}
		name := strings.TrimSpace(r.PropertyName)
		desc := descriptionKey(r.Description)
		if name == "" && desc == "" {
			s.skip(errors.NewRuleError(r.EntityType.String(), "", "no property name or description"))
			continue
		}

		t, ok := s.tables[r.EntityType]
		if !ok {
			t = Table{byName: map[string]Action{}, byDescription: map[string]Action{}}
			s.tables[r.EntityType] = t
		}
		if name != "" {
			put(t.byName, name, r.Action)
		}
		if desc != "" {
			put(t.byDescription, desc, r.Action)
		}
	}
	return s
}

func (s *Store) skip(err *errors.RuleError) {
	s.skipped++
	logging.Warn().Err(err).Str("entity_type", err.EntityType).Msg("Skipping exception rule")
}

// LoadSnapshot queries the provider exactly once per entity type and builds
// the batch snapshot. Any provider failure aborts the load.
func LoadSnapshot(ctx context.Context, provider RuleProvider, types ...catalogs.EntityType) (*Store, error) {
	var all []Rule
	for _, t := range types {
		rules, err := provider.ListRules(ctx, t)
		if err != nil {
			if errors.IsProviderUnavailable(err) {
				return nil, err
			}
			return nil, errors.WrapProvider("rules", "list_rules", err)
		}
		for _, r := range rules {
			if r.EntityType == "" {
				r.EntityType = t
			}
			all = append(all, r)
		}
	}
	s := NewStore(all)
	logging.FromContext(ctx).Debug().
		Int("rules", len(all)).
		Int("skipped", s.skipped).
		Msg("Loaded exception rule snapshot")
	return s, nil
}

// Load returns the table for an entity type. Unknown types yield an empty table.
func (s *Store) Load(entityType catalogs.EntityType) Table {
	if s == nil {
		return Table{}
	}
	return s.tables[entityType]
}

// Lookup returns the action for a property, consulting the display-label
// index only when the property identifier has no rule. Absent rules resolve
// to Ignore.
func (s *Store) Lookup(entityType catalogs.EntityType, property string) Action {
	return s.Load(entityType).Lookup(property)
}

// Skipped returns the number of rule rows rejected while building the store.
func (s *Store) Skipped() int {
	if s == nil {
		return 0
	}
	return s.skipped
}

// Lookup returns the action for a property, defaulting to Ignore.
func (t Table) Lookup(property string) Action {
	if a, ok := t.byName[strings.TrimSpace(property)]; ok {
		return a
	}
	if a, ok := t.byDescription[descriptionKey(property)]; ok {
		return a
	}
	return Ignore
}

// Len returns the number of distinct rule keys in the table.
func (t Table) Len() int {
	return len(t.byName) + len(t.byDescription)
}

// Actions returns a copy of the identifier-keyed rules.
func (t Table) Actions() map[string]Action {
	out := make(map[string]Action, len(t.byName))
	for k, v := range t.byName {
		out[k] = v
	}
	return out
}

func put(m map[string]Action, key string, a Action) {
	if prev, ok := m[key]; ok && prev == Update {
		return
	}
	m[key] = a
}

func descriptionKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
