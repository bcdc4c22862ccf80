package handlers

import (
	"net/http"

	"github.com/agentstation/driftmap/internal/server/cache"
	"github.com/agentstation/driftmap/internal/server/filter"
	"github.com/agentstation/driftmap/internal/server/response"
	"github.com/agentstation/driftmap/pkg/catalogs"
)

// HandleResolutions handles GET /api/v1/resolutions/{type}.
// @Summary Resolve entities
// @Description Resolve one page of entities of a type into Ignore/Update/NoAction buckets
// @Tags resolutions
// @Produce json
// @Param type path string true "Entity type (class, group, attribute)"
// @Param search query string false "Name or ID substring"
// @Param status_variance query string false "Status variance"
// @Param event query string false "Event"
// @Param a_priznak query string false "A-priznak"
// @Param page query integer false "Page number (default: 1)"
// @Param per_page query integer false "Page size (default: 20, max: 1000)"
// @Param exception_action_filter query integer false "Only entities with this canonical action (-1, 0, 2)"
// @Param source_target_filter query string false "Diff direction filter"
// @Param property_filter query string false "Property names (comma-separated)"
// @Param show_update_actions query boolean false "Show or hide diffs whose rule is Update"
// @Success 200 {object} response.Response{data=engine.Result}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/resolutions/{type} [get].
func (h *Handlers) HandleResolutions(w http.ResponseWriter, r *http.Request, typeName string) {
	entityType, err := catalogs.ParseEntityType(typeName)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	cacheKey := cache.Key("resolutions:"+entityType.String(), r.URL.Query())
	if cached, found := h.cache.Get(cacheKey); found {
		response.OK(w, cached)
		return
	}

	eng, err := h.app.Engine(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	req := filter.ParseResolutionRequest(r, entityType)
	result, err := eng.Run(r.Context(), req)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Set(cacheKey, result)
	response.OK(w, result)
}

// HandleProperties handles GET /api/v1/resolutions/{type}/properties.
// @Summary List diff properties
// @Description Distinct property names found in the change logs of matching entities
// @Tags resolutions
// @Produce json
// @Param type path string true "Entity type (class, group, attribute)"
// @Param search query string false "Name or ID substring"
// @Success 200 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Router /api/v1/resolutions/{type}/properties [get].
func (h *Handlers) HandleProperties(w http.ResponseWriter, r *http.Request, typeName string) {
	entityType, err := catalogs.ParseEntityType(typeName)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	cacheKey := cache.Key("properties:"+entityType.String(), r.URL.Query())
	if cached, found := h.cache.Get(cacheKey); found {
		response.OK(w, cached)
		return
	}

	eng, err := h.app.Engine(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	props, err := eng.Properties(r.Context(), entityType, filter.ParseSearch(r.URL.Query()))
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	result := propertiesResponse(entityType, props)
	h.cache.Set(cacheKey, result)
	response.OK(w, result)
}

func propertiesResponse(entityType catalogs.EntityType, props []string) map[string]any {
	if props == nil {
		props = []string{}
	}
	return map[string]any{
		"entity_type": entityType,
		"properties":  props,
		"count":       len(props),
	}
}

