// Package catalogs defines the schema catalog entities whose change logs are
// reconciled against exception rules, and the provider interface that
// supplies them.
package catalogs

// Entity is a class, attribute group, or attribute record from the catalog.
// It is owned by the catalog provider and read-only to the resolution engine.
type Entity struct {
	ID          string     `json:"id" yaml:"id"`
	Type        EntityType `json:"type" yaml:"type"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`

	// Parent reference; set for attributes (their owning class)
	ParentID   *string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	ParentName string  `json:"parent_name,omitempty" yaml:"parent_name,omitempty"`

	// RawLog is the free-text change log; nil when the entity has none
	RawLog *string `json:"raw_log,omitempty" yaml:"raw_log,omitempty"`

	// Pass-through columns matched by SearchFilters
	StatusVariance string `json:"status_variance,omitempty" yaml:"status_variance,omitempty"`
	Event          string `json:"event,omitempty" yaml:"event,omitempty"`
	APriznak       string `json:"a_priznak,omitempty" yaml:"a_priznak,omitempty"`
}

// Log returns the raw change log, or "" when absent.
func (e Entity) Log() string {
	if e.RawLog == nil {
		return ""
	}
	return *e.RawLog
}

// Parent returns the parent ID, or "" when the entity has no parent.
func (e Entity) Parent() string {
	if e.ParentID == nil {
		return ""
	}
	return *e.ParentID
}
