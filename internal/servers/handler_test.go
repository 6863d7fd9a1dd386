package servers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/reqctx/reqctxtest"
)

func newTestRouter(t *testing.T) (http.Handler, *testEnv) {
	env := newTestEnv(t)
	h := NewHandler(env.svc, reqctxtest.NewProvider(nil, env.servers), zap.NewNop())
	r := chi.NewRouter()
	h.Routes(r)
	return r, env
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHandler_Create(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doRequest(t, router, http.MethodPost, "/v1/servers", `{"server_name":"Akatsuki","hourly_request_limit":100}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, "Akatsuki", data["server_name"])
	assert.NotEmpty(t, data["secret_key"])
	assert.Equal(t, `"1"`, rec.Header().Get("ETag"))
	assert.Equal(t, "/v1/servers/"+data["server_id"].(string), rec.Header().Get("Location"))

	rec, body = doRequest(t, router, http.MethodGet, "/v1/servers/"+data["server_id"].(string), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body["data"], "secret_key")

	rec, body = doRequest(t, router, http.MethodPost, "/v1/servers", `{"server_name":"Akatsuki","hourly_request_limit":100}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "servers.name_exists", body["error"])
}

func TestHandler_PartialUpdate(t *testing.T) {
	tests := []struct {
		name       string
		ifMatch    string
		wantStatus int
		wantError  string
		wantETag   string
	}{
		{name: "matching etag", ifMatch: `"1"`, wantStatus: http.StatusOK, wantETag: `"2"`},
		{name: "missing etag", wantStatus: http.StatusPreconditionRequired, wantError: "servers.precondition_required"},
		{name: "stale etag", ifMatch: `"5"`, wantStatus: http.StatusPreconditionFailed, wantError: "servers.already_updated"},
		{name: "unquoted etag", ifMatch: `1`, wantStatus: http.StatusPreconditionFailed, wantError: "servers.already_updated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, env := newTestRouter(t)
			created, err := env.svc.Create(env.ctx, "Akatsuki", 100)
			require.NoError(t, err)

			header := http.Header{}
			if tt.ifMatch != "" {
				header.Set("If-Match", tt.ifMatch)
			}
			rec, body := doRequest(t, router, http.MethodPatch, "/v1/servers/"+created.ID.String(),
				`{"hourly_request_limit":250}`, header)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, tt.wantETag, rec.Header().Get("ETag"))
			assert.EqualValues(t, 250, body["data"].(map[string]any)["hourly_request_limit"])
		})
	}
}

func TestHandler_FetchManyAndDelete(t *testing.T) {
	router, env := newTestRouter(t)
	created, err := env.svc.Create(env.ctx, "Akatsuki", 100)
	require.NoError(t, err)

	rec, body := doRequest(t, router, http.MethodGet, "/v1/servers?page=1&page_size=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)

	rec, _ = doRequest(t, router, http.MethodDelete, "/v1/servers/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body = doRequest(t, router, http.MethodDelete, "/v1/servers/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "servers.not_found", body["error"])
}

func TestParseIfMatch(t *testing.T) {
	got, err := parseIfMatch(`"42"`)
	require.NoError(t, err)
	assert.Equal(t, int64(42), *got)

	got, err = parseIfMatch("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseIfMatch(`W/"42"`)
	assert.ErrorIs(t, err, apperror.ServersAlreadyUpdated)
}
