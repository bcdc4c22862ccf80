package response

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/driftmap/pkg/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, map[string]int{"count": 3})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"count":3},"error":null}`, w.Body.String())
}

func TestFail(t *testing.T) {
	resp := Fail("X", "msg", "details")
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "X", resp.Error.Code)
}

func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "validation", err: errors.NewValidationError("page", "x", "bad"), status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "not found", err: errors.NewNotFoundError("class", "c1"), status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "provider", err: errors.NewProviderError("sqlite3", "list_entities", errors.New("locked")), status: http.StatusBadGateway, code: "PROVIDER_UNAVAILABLE"},
		{name: "read only", err: errors.NewConfigError("engine", "no sink", errors.ErrReadOnly), status: http.StatusServiceUnavailable, code: "SERVICE_UNAVAILABLE"},
		{name: "deadline", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout, code: "TIMEOUT"},
		{name: "other", err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromType(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	InternalError(w, errors.New("password=hunter2"))
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowed(w, http.MethodDelete)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, decode(t, w).Error.Details, "DELETE")
}
