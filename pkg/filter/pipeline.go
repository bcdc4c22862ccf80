package filter

import (
	"github.com/agentstation/driftmap/pkg/resolver"
)

// Params are the display filter parameters of a request. Zero values are
// identity transforms.
type Params struct {
	Direction         Direction `json:"source_target_filter,omitempty"`
	Properties        []string  `json:"property_filter,omitempty"`
	ShowUpdateActions *bool     `json:"show_update_actions,omitempty"`
}

// IsZero reports whether no filter would remove anything. A property list
// holding only blank names counts as absent.
func (p Params) IsZero() bool {
	return !p.Direction.Valid() && len(allowList(p.Properties)) == 0 && (p.ShowUpdateActions == nil || *p.ShowUpdateActions)
}

// Pipeline applies its stages in order.
type Pipeline struct {
	stages []Filter
}

// New builds the fixed-order pipeline for params: direction, then property
// allow-list, then update visibility.
func New(p Params) *Pipeline {
	if p.IsZero() {
		return &Pipeline{}
	}
	return &Pipeline{stages: []Filter{
		ByDirection(p.Direction),
		ByProperties(p.Properties),
		ByUpdateVisibility(p.ShowUpdateActions),
	}}
}

// Apply implements Filter.
func (p *Pipeline) Apply(diffs []resolver.ResolvedDiff) []resolver.ResolvedDiff {
	if p == nil {
		return diffs
	}
	for _, f := range p.stages {
		diffs = f.Apply(diffs)
	}
	return diffs
}
