package engine

import (
	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/resolver"
)

// Result is one page of a resolution pass.
type Result struct {
	Buckets Buckets `json:"buckets" yaml:"buckets"`
	// Groups is set for the attribute view only
	Groups []Group `json:"groups,omitempty" yaml:"groups,omitempty"`

	// TotalCount is the number of paged units in scope: entities, or parent
	// groups in the attribute view.
	TotalCount  int  `json:"total_count" yaml:"total_count"`
	TotalItems  int  `json:"total_items" yaml:"total_items"`
	TotalPages  int  `json:"total_pages" yaml:"total_pages"`
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PerPage     int  `json:"per_page" yaml:"per_page"`
	HasPrev     bool `json:"has_prev" yaml:"has_prev"`
	HasNext     bool `json:"has_next" yaml:"has_next"`

	Statistics          Statistics `json:"statistics" yaml:"statistics"`
	AvailableProperties []string   `json:"available_properties" yaml:"available_properties"`

	BatchID string `json:"batch_id,omitempty" yaml:"batch_id,omitempty"`

	// Dropped counts log blocks the parser discarded across the catalog.
	Dropped int `json:"-" yaml:"-"`
}

// Items returns the page's items in bucket order.
func (r *Result) Items() []Item {
	items := make([]Item, 0, len(r.Buckets.Ignore)+len(r.Buckets.Update)+len(r.Buckets.NoAction))
	items = append(items, r.Buckets.Ignore...)
	items = append(items, r.Buckets.Update...)
	return append(items, r.Buckets.NoAction...)
}

// Buckets holds entities by canonical action.
type Buckets struct {
	Ignore   []Item `json:"ignore" yaml:"ignore"`
	Update   []Item `json:"update" yaml:"update"`
	NoAction []Item `json:"no_action" yaml:"no_action"`
}

func newBuckets() Buckets {
	return Buckets{Ignore: []Item{}, Update: []Item{}, NoAction: []Item{}}
}

func (b *Buckets) add(item Item) {
	switch item.CanonicalAction {
	case exceptions.Update:
		b.Update = append(b.Update, item)
	case exceptions.NoAction:
		b.NoAction = append(b.NoAction, item)
	default:
		b.Ignore = append(b.Ignore, item)
	}
}

// Statistics tallies canonical actions over every evaluated entity.
type Statistics struct {
	IgnoreCount   int `json:"ignore_count" yaml:"ignore_count"`
	UpdateCount   int `json:"update_count" yaml:"update_count"`
	NoActionCount int `json:"no_action_count" yaml:"no_action_count"`
}

// Total returns the number of evaluated entities.
func (s Statistics) Total() int {
	return s.IgnoreCount + s.UpdateCount + s.NoActionCount
}

// Count returns the tally for one action.
func (s Statistics) Count(a exceptions.Action) int {
	switch a {
	case exceptions.Ignore:
		return s.IgnoreCount
	case exceptions.Update:
		return s.UpdateCount
	case exceptions.NoAction:
		return s.NoActionCount
	}
	return 0
}

func (s *Statistics) add(a exceptions.Action) {
	switch a {
	case exceptions.Update:
		s.UpdateCount++
	case exceptions.NoAction:
		s.NoActionCount++
	default:
		s.IgnoreCount++
	}
}

// Item is one rendered entity.
type Item struct {
	ID          string              `json:"id" yaml:"id"`
	Type        catalogs.EntityType `json:"type" yaml:"type"`
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	ParentID    *string             `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	ParentName  string              `json:"parent_name,omitempty" yaml:"parent_name,omitempty"`

	// Action is the display action over the filtered diffs
	Action          exceptions.Action `json:"action" yaml:"action"`
	CanonicalAction exceptions.Action `json:"canonical_action" yaml:"canonical_action"`

	DiffCount      int                     `json:"diff_count" yaml:"diff_count"`
	TotalDiffCount int                     `json:"total_diff_count" yaml:"total_diff_count"`
	Source         string                  `json:"source" yaml:"source"`
	Target         string                  `json:"target" yaml:"target"`
	Diffs          []resolver.ResolvedDiff `json:"diffs" yaml:"diffs"`
}

func newItem(canonical resolver.EntityResolution, display resolver.DisplayResolution) Item {
	e := canonical.Entity
	src, tgt := resolver.Representative(display.Diffs)
	return Item{
		ID:              e.ID,
		Type:            e.Type,
		Name:            e.Name,
		Description:     e.Description,
		ParentID:        e.ParentID,
		ParentName:      e.ParentName,
		Action:          display.Action,
		CanonicalAction: canonical.Action,
		DiffCount:       len(display.Diffs),
		TotalDiffCount:  len(canonical.Diffs),
		Source:          src,
		Target:          tgt,
		Diffs:           display.Diffs,
	}
}

// Group is a parent class with its qualifying attributes.
type Group struct {
	ParentID   string `json:"parent_id" yaml:"parent_id"`
	ParentName string `json:"parent_name,omitempty" yaml:"parent_name,omitempty"`
	Items      []Item `json:"items" yaml:"items"`
}
