package engine

import (
	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/constants"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/filter"
)

// Request describes one resolution pass over a catalog.
type Request struct {
	EntityType catalogs.EntityType    `json:"entity_type"`
	Search     catalogs.SearchFilters `json:"search"`

	// Page is 1-based. Values below 1 select the first page.
	Page int `json:"page"`
	// PerPage is clamped to [constants.MinPerPage, constants.MaxPerPage];
	// zero selects constants.DefaultPerPage.
	PerPage int `json:"per_page"`

	// ActionFilter restricts the returned buckets to one action.
	// Statistics are unaffected.
	ActionFilter *exceptions.Action `json:"exception_action_filter,omitempty"`

	Filters filter.Params `json:"filters"`
}

// Normalize returns a copy of r with paging defaults and limits applied and
// an invalid action filter cleared.
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = constants.DefaultPage
	}
	switch {
	case r.PerPage == 0:
		r.PerPage = constants.DefaultPerPage
	case r.PerPage < constants.MinPerPage:
		r.PerPage = constants.MinPerPage
	case r.PerPage > constants.MaxPerPage:
		r.PerPage = constants.MaxPerPage
	}
	if r.ActionFilter != nil && !r.ActionFilter.Valid() {
		r.ActionFilter = nil
	}
	return r
}

// grouped reports whether the request uses the two-level attribute view.
func (r Request) grouped() bool {
	return r.EntityType == catalogs.EntityTypeAttribute
}
