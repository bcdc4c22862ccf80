package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/driftmap/internal/cmd/application"
	"github.com/agentstation/driftmap/internal/server"
	"github.com/agentstation/driftmap/internal/sources/memory"
	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/engine"
	"github.com/agentstation/driftmap/pkg/errors"
	"github.com/agentstation/driftmap/pkg/exceptions"
)

func ptr[T any](v T) *T { return &v }

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newSource() *memory.Source {
	return memory.New(
		[]catalogs.Entity{
			{ID: "u1", Type: catalogs.EntityTypeClass, Name: "Pump", RawLog: ptr("readOnly\nsource = false\ntarget = true\n")},
			{ID: "i1", Type: catalogs.EntityTypeClass, Name: "Valve", RawLog: ptr("label\nsource = a\ntarget = b\n")},
			{ID: "n1", Type: catalogs.EntityTypeClass, Name: "Tank"},
		},
		[]exceptions.Rule{
			{EntityType: catalogs.EntityTypeClass, PropertyName: "readOnly", Action: exceptions.Update},
		},
	)
}

func newServer(t *testing.T, src *memory.Source, mutate func(*server.Config)) (*server.Server, http.Handler) {
	t.Helper()
	eng, err := engine.New(src, src, engine.WithSink(src))
	require.NoError(t, err)

	app := &application.Mock{
		EngineFunc: func(context.Context) (*engine.Engine, error) { return eng, nil },
	}
	cfg := server.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := server.New(app, cfg)
	require.NoError(t, err)
	return srv, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestNewRequiresApplication(t *testing.T) {
	_, err := server.New(nil, server.DefaultConfig())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec, env := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Nil(t, env.Error)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	}

	rec, env := do(t, h, http.MethodGet, "/api/v1/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ready", data["status"])
}

func TestReadyWithoutBackend(t *testing.T) {
	app := &application.Mock{
		EngineFunc: func(context.Context) (*engine.Engine, error) {
			return nil, errors.NewConfigError("sources", "path is required", nil)
		},
	}
	srv, err := server.New(app, server.DefaultConfig())
	require.NoError(t, err)

	rec, _ := do(t, srv.Handler(), http.MethodGet, "/api/v1/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestResolutions(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/resolutions/class", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res engine.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, engine.Statistics{IgnoreCount: 1, UpdateCount: 1, NoActionCount: 1}, res.Statistics)
	require.Len(t, res.Buckets.Update, 1)
	assert.Equal(t, "u1", res.Buckets.Update[0].ID)
	assert.Equal(t, exceptions.Update, res.Buckets.Update[0].CanonicalAction)
	assert.Equal(t, 1, res.CurrentPage)
	assert.Equal(t, 20, res.PerPage)
	assert.ElementsMatch(t, []string{"label", "readOnly"}, res.AvailableProperties)
}

func TestResolutionsActionFilter(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/resolutions/classes?exception_action_filter=-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res engine.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Empty(t, res.Buckets.Ignore)
	assert.Empty(t, res.Buckets.Update)
	require.Len(t, res.Buckets.NoAction, 1)
	// statistics cover every evaluated entity
	assert.Equal(t, 3, res.Statistics.Total())
}

func TestResolutionsUnknownType(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/resolutions/table", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestResolutionsRouting(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/resolutions/class", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/resolutions/class/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolutionsCached(t *testing.T) {
	src := newSource()
	srv, h := newServer(t, src, nil)

	rec, _ := do(t, h, http.MethodGet, "/api/v1/resolutions/class?page=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	src.AddEntities(catalogs.Entity{ID: "n2", Type: catalogs.EntityTypeClass, Name: "Pipe"})

	_, env := do(t, h, http.MethodGet, "/api/v1/resolutions/class?page=1", "")
	var res engine.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 3, res.Statistics.Total())
	assert.Equal(t, int64(1), srv.Cache().GetStats().Hits)

	rec, _ = do(t, h, http.MethodDelete, "/api/v1/cache", "")
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = do(t, h, http.MethodGet, "/api/v1/resolutions/class?page=1", "")
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 4, res.Statistics.Total())
}

func TestResolutionsCacheDisabled(t *testing.T) {
	src := newSource()
	_, h := newServer(t, src, func(c *server.Config) { c.CacheTTL = 0 })

	do(t, h, http.MethodGet, "/api/v1/resolutions/class", "")
	src.AddEntities(catalogs.Entity{ID: "n2", Type: catalogs.EntityTypeClass, Name: "Pipe"})

	_, env := do(t, h, http.MethodGet, "/api/v1/resolutions/class", "")
	var res engine.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 4, res.Statistics.Total())
}

func TestProperties(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/resolutions/class/properties", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Properties []string `json:"properties"`
		Count      int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.ElementsMatch(t, []string{"label", "readOnly"}, data.Properties)
	assert.Equal(t, 2, data.Count)
}

func TestRules(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/rules/class", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Rules []struct {
			Property   string            `json:"property"`
			Action     exceptions.Action `json:"action"`
			ActionName string            `json:"action_name"`
		} `json:"rules"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, 1, data.Count)
	assert.Equal(t, "readOnly", data.Rules[0].Property)
	assert.Equal(t, exceptions.Update, data.Rules[0].Action)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/rules/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParse(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	body := `{"log":"readOnly\nsource = false\ntarget = true\n\ninforms\nsource =\ntarget = first\n  second\n"}`
	rec, env := do(t, h, http.MethodPost, "/api/v1/parse", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Diffs []struct {
			Property string `json:"property"`
			Source   string `json:"source"`
			Target   string `json:"target"`
		} `json:"diffs"`
		Dropped int `json:"dropped"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Diffs, 2)
	assert.Equal(t, "readOnly", data.Diffs[0].Property)
	assert.Equal(t, "true", data.Diffs[0].Target)
	assert.Equal(t, "informs", data.Diffs[1].Property)
	assert.Equal(t, "first\nsecond", data.Diffs[1].Target)
	assert.Zero(t, data.Dropped)
}

func TestParseErrors(t *testing.T) {
	_, h := newServer(t, newSource(), func(c *server.Config) { c.MaxBodyBytes = 16 })

	rec, _ := do(t, h, http.MethodPost, "/api/v1/parse", `{"log":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/parse", `{bad`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/parse", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestParsePlainText(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", strings.NewReader("label\nsource = a\ntarget = b\n\nstray text\n"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var data struct {
		Diffs []struct {
			Property string `json:"property"`
		} `json:"diffs"`
		Dropped int `json:"dropped"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Diffs, 1)
	assert.Equal(t, "label", data.Diffs[0].Property)
	assert.Equal(t, 1, data.Dropped)
}

func TestProviderFailure(t *testing.T) {
	failing := catalogs.ProviderFunc(func(context.Context, catalogs.EntityType, catalogs.SearchFilters) ([]catalogs.Entity, error) {
		return nil, errors.NewProviderError("catalog", "list_entities", assert.AnError)
	})
	eng, err := engine.New(failing, newSource())
	require.NoError(t, err)

	app := &application.Mock{
		EngineFunc: func(context.Context) (*engine.Engine, error) { return eng, nil },
	}
	srv, err := server.New(app, server.DefaultConfig())
	require.NoError(t, err)

	rec, env := do(t, srv.Handler(), http.MethodGet, "/api/v1/resolutions/class", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PROVIDER_UNAVAILABLE", env.Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newServer(t, newSource(), nil)

	do(t, h, http.MethodGet, "/api/v1/resolutions/class", "")
	rec, _ := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "driftmap_http_requests_total")

	_, h = newServer(t, newSource(), func(c *server.Config) { c.MetricsEnabled = false })
	rec, _ = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	_, h := newServer(t, newSource(), func(c *server.Config) {
		c.CORSEnabled = true
		c.CORSOrigins = []string{"https://app.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resolutions/class", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
