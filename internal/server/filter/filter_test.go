package filter

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/filter"
)

func TestParseResolutionRequestDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/resolutions/class", nil)
	req := ParseResolutionRequest(r, catalogs.EntityTypeClass)

	assert.Equal(t, catalogs.EntityTypeClass, req.EntityType)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PerPage)
	assert.Nil(t, req.ActionFilter)
	assert.True(t, req.Search.IsZero())
	assert.True(t, req.Filters.IsZero())
}

func TestParseQuery(t *testing.T) {
	q, err := url.ParseQuery("search=pump&status_variance=changed&event=e&a_priznak=p" +
		"&page=3&per_page=50&exception_action_filter=update&source_target_filter=has_target" +
		"&property_filter=readOnly,informs&property_filter=label&show_update_actions=false")
	require.NoError(t, err)

	req := ParseQuery(q, catalogs.EntityTypeAttribute)
	assert.Equal(t, catalogs.SearchFilters{Search: "pump", StatusVariance: "changed", Event: "e", APriznak: "p"}, req.Search)
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 50, req.PerPage)
	require.NotNil(t, req.ActionFilter)
	assert.Equal(t, exceptions.Update, *req.ActionFilter)
	assert.Equal(t, filter.HasTarget, req.Filters.Direction)
	assert.Equal(t, []string{"readOnly", "informs", "label"}, req.Filters.Properties)
	require.NotNil(t, req.Filters.ShowUpdateActions)
	assert.False(t, *req.Filters.ShowUpdateActions)
}

func TestParseQueryFallbacks(t *testing.T) {
	tests := []struct {
		query   string
		page    int
		perPage int
	}{
		{query: "page=abc&per_page=xyz", page: 1, perPage: 20},
		{query: "page=0&per_page=0", page: 1, perPage: 20},
		{query: "page=-4&per_page=-10", page: 1, perPage: 1},
		{query: "per_page=100000", page: 1, perPage: 1000},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			req := ParseQuery(q, catalogs.EntityTypeClass)
			assert.Equal(t, tt.page, req.Page)
			assert.Equal(t, tt.perPage, req.PerPage)
		})
	}
}

func TestParseQueryIgnoresUnknownEnums(t *testing.T) {
	q, err := url.ParseQuery("exception_action_filter=maybe&source_target_filter=sideways&show_update_actions=perhaps")
	require.NoError(t, err)
	req := ParseQuery(q, catalogs.EntityTypeClass)
	assert.Nil(t, req.ActionFilter)
	assert.Equal(t, filter.DirectionAny, req.Filters.Direction)
	assert.Nil(t, req.Filters.ShowUpdateActions)
}

func TestParseQueryActionCodes(t *testing.T) {
	q, err := url.ParseQuery("exception_action_filter=-1")
	require.NoError(t, err)
	req := ParseQuery(q, catalogs.EntityTypeClass)
	require.NotNil(t, req.ActionFilter)
	assert.Equal(t, exceptions.NoAction, *req.ActionFilter)
}
