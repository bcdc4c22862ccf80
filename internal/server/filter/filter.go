// Package filter parses resolution request parameters from HTTP queries.
// Malformed values fall back to defaults and unknown enum values are ignored;
// parsing never fails.
package filter

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/constants"
	"github.com/agentstation/driftmap/pkg/engine"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/filter"
)

// Query parameter names.
const (
	ParamSearch            = "search"
	ParamStatusVariance    = "status_variance"
	ParamEvent             = "event"
	ParamAPriznak          = "a_priznak"
	ParamPage              = "page"
	ParamPerPage           = "per_page"
	ParamActionFilter      = "exception_action_filter"
	ParamDirection         = "source_target_filter"
	ParamProperty          = "property_filter"
	ParamShowUpdateActions = "show_update_actions"
)

// ParseResolutionRequest extracts a resolution request from r's query.
func ParseResolutionRequest(r *http.Request, entityType catalogs.EntityType) engine.Request {
	return ParseQuery(r.URL.Query(), entityType)
}

// ParseQuery builds a resolution request from query values.
func ParseQuery(q url.Values, entityType catalogs.EntityType) engine.Request {
	req := engine.Request{
		EntityType: entityType,
		Search:     ParseSearch(q),
		Page:       parseIntOrDefault(q.Get(ParamPage), constants.DefaultPage),
		PerPage:    parseIntOrDefault(q.Get(ParamPerPage), constants.DefaultPerPage),
		Filters: filter.Params{
			Direction:  filter.ParseDirection(q.Get(ParamDirection)),
			Properties: parseList(q[ParamProperty]),
		},
	}

	if v := q.Get(ParamActionFilter); v != "" {
		if a, err := exceptions.ParseAction(v); err == nil {
			req.ActionFilter = &a
		}
	}
	if v := q.Get(ParamShowUpdateActions); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			req.Filters.ShowUpdateActions = &b
		}
	}
	return req.Normalize()
}

// ParseSearch extracts the provider pass-through filters.
func ParseSearch(q url.Values) catalogs.SearchFilters {
	return catalogs.SearchFilters{
		Search:         strings.TrimSpace(q.Get(ParamSearch)),
		StatusVariance: strings.TrimSpace(q.Get(ParamStatusVariance)),
		Event:          strings.TrimSpace(q.Get(ParamEvent)),
		APriznak:       strings.TrimSpace(q.Get(ParamAPriznak)),
	}
}

// parseList accepts repeated parameters and comma separated values.
func parseList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseIntOrDefault parses an integer or returns the default value.
func parseIntOrDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return i
	}
	return defaultVal
}
