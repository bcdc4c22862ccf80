package handlers

import (
	"net/http"
	"sort"

	"github.com/agentstation/driftmap/internal/server/response"
	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/exceptions"
)

// RuleView is one exception rule as served by the API.
type RuleView struct {
	Property   string            `json:"property"`
	Action     exceptions.Action `json:"action"`
	ActionName string            `json:"action_name"`
}

// HandleRules handles GET /api/v1/rules/{type}.
// @Summary List exception rules
// @Description The exception rule table snapshot for an entity type
// @Tags rules
// @Produce json
// @Param type path string true "Entity type (class, group, attribute)"
// @Success 200 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/rules/{type} [get].
func (h *Handlers) HandleRules(w http.ResponseWriter, r *http.Request, typeName string) {
	entityType, err := catalogs.ParseEntityType(typeName)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	eng, err := h.app.Engine(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	table, err := eng.Rules(r.Context(), entityType)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	rules := ruleViews(table)
	response.OK(w, map[string]any{
		"entity_type": entityType,
		"rules":       rules,
		"count":       len(rules),
	})
}

func ruleViews(table exceptions.Table) []RuleView {
	actions := table.Actions()
	views := make([]RuleView, 0, len(actions))
	for property, action := range actions {
		views = append(views, RuleView{Property: property, Action: action, ActionName: action.String()})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Property < views[j].Property })
	return views
}
