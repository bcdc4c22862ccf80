// Package cmdutil provides shared flags for driftmap commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/engine"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/filter"
)

// SearchFlags holds the provider pass-through filters.
type SearchFlags struct {
	Search         string
	StatusVariance string
	Event          string
	APriznak       string
}

// AddSearchFlags adds the search filter flags to a command.
func AddSearchFlags(cmd *cobra.Command) *SearchFlags {
	flags := &SearchFlags{}

	cmd.Flags().StringVarP(&flags.Search, "search", "s", "",
		"Name or ID substring")
	cmd.Flags().StringVar(&flags.StatusVariance, "status-variance", "",
		"Filter by status variance")
	cmd.Flags().StringVar(&flags.Event, "event", "",
		"Filter by event")
	cmd.Flags().StringVar(&flags.APriznak, "a-priznak", "",
		"Filter by a-priznak")

	return flags
}

// Filters converts the flags to provider filters.
func (f *SearchFlags) Filters() catalogs.SearchFilters {
	return catalogs.SearchFilters{
		Search:         f.Search,
		StatusVariance: f.StatusVariance,
		Event:          f.Event,
		APriznak:       f.APriznak,
	}
}

// ResolutionFlags holds the paging and filter flags of a resolution pass.
type ResolutionFlags struct {
	*SearchFlags

	Page       int
	PerPage    int
	Action     string
	Direction  string
	Properties []string
	// ShowUpdates only applies when the flag was set explicitly
	ShowUpdates bool

	cmd *cobra.Command
}

// AddResolutionFlags adds search, paging and diff filter flags to a command.
func AddResolutionFlags(cmd *cobra.Command, defaultPerPage int) *ResolutionFlags {
	flags := &ResolutionFlags{SearchFlags: AddSearchFlags(cmd), cmd: cmd}

	cmd.Flags().IntVarP(&flags.Page, "page", "p", 1,
		"Page number")
	cmd.Flags().IntVar(&flags.PerPage, "per-page", defaultPerPage,
		"Page size (1-1000)")
	cmd.Flags().StringVarP(&flags.Action, "action", "a", "",
		"Only entities with this canonical action: ignore, update, no_action (or 0, 2, -1)")
	cmd.Flags().StringVar(&flags.Direction, "direction", "",
		"Diff direction: source_to_null, null_to_target, source_to_target, has_source, has_target")
	cmd.Flags().StringSliceVar(&flags.Properties, "property", nil,
		"Only diffs of these properties (repeatable or comma-separated)")
	cmd.Flags().BoolVar(&flags.ShowUpdates, "show-updates", true,
		"Show diffs whose rule is update (--show-updates=false hides them)")

	return flags
}

// Request builds a normalized engine request. Unparseable enum values are
// ignored, as the HTTP API does.
func (f *ResolutionFlags) Request(entityType catalogs.EntityType) engine.Request {
	req := engine.Request{
		EntityType: entityType,
		Search:     f.Filters(),
		Page:       f.Page,
		PerPage:    f.PerPage,
		Filters: filter.Params{
			Direction:  filter.ParseDirection(f.Direction),
			Properties: f.Properties,
		},
	}
	if f.Action != "" {
		if a, err := exceptions.ParseAction(f.Action); err == nil {
			req.ActionFilter = &a
		}
	}
	if f.cmd != nil && f.cmd.Flags().Changed("show-updates") {
		show := f.ShowUpdates
		req.Filters.ShowUpdateActions = &show
	}
	return req.Normalize()
}
