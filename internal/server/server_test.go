package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/sqlbridge/internal/database"
	"github.com/koustreak/sqlbridge/internal/database/sqlite"
	"github.com/koustreak/sqlbridge/internal/errs"
	"github.com/koustreak/sqlbridge/internal/logger"
	"github.com/koustreak/sqlbridge/internal/tools"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return errs.New(errs.ErrKindConnectionFailed, "ping failed")
}

func newTestServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	exec, err := sqlite.New(context.Background(), database.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = exec.Close() })

	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Output: &buf})
	return New(nil, tools.NewRouter(exec), exec, log), &buf
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := New(nil, tools.NewRouter(nil), failingPinger{}, logger.Nop())
	rec = do(t, down, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":{"kind":"connection_failed","message":"ping failed"}}`, rec.Body.String())
}

func TestCapabilitiesAndCatalog(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/capabilities", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "sqlite", body["name"])
	assert.Equal(t, map[string]any{"tools": true, "resources": false, "prompts": false}, body["capabilities"])

	rec = do(t, s, http.MethodGet, "/v1/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeBody(t, rec)["tools"].([]any)
	assert.Len(t, listed, 4)
	assert.Equal(t, "query", listed[0].(map[string]any)["name"])
}

func TestCallTool_Walkthrough(t *testing.T) {
	s, _ := newTestServer(t)

	steps := []struct {
		tool string
		body string
		text string
	}{
		{tool: "execute", body: `{"statement":"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)"}`, text: `{"rowcount":0,"lastrowid":0}`},
		{tool: "execute", body: `{"statement":"INSERT INTO users (name) VALUES (?)","params":["a"]}`, text: `{"rowcount":1,"lastrowid":1}`},
		{tool: "executemany", body: `{"statement":"INSERT INTO users (name) VALUES (?)","params_list":[["b"],["c"]]}`, text: `{"rowcount":2}`},
		{tool: "query", body: `{"query":"SELECT * FROM users"}`, text: `{"columns":["id","name"],"rows":[{"id":1,"name":"a"},{"id":2,"name":"b"},{"id":3,"name":"c"}]}`},
	}

	for _, step := range steps {
		rec := do(t, s, http.MethodPost, "/v1/tools/"+step.tool, step.body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Content []tools.Content `json:"content"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Content, 1)
		assert.Equal(t, "text", resp.Content[0].Type)
		assert.JSONEq(t, step.text, resp.Content[0].Text)
	}
}

func TestCallTool_EmptyBody(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/tools/query", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":{"kind":"invalid_input","message":"missing required parameter: query"}}`, rec.Body.String())
}

func TestCallTool_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		kind   string
	}{
		{name: "unknown tool", path: "/v1/tools/drop", body: `{}`, status: http.StatusNotFound, kind: "not_found"},
		{name: "body not object", path: "/v1/tools/query", body: `["SELECT 1"]`, status: http.StatusBadRequest, kind: "invalid_input"},
		{name: "body null", path: "/v1/tools/query", body: `null`, status: http.StatusBadRequest, kind: "invalid_input"},
		{name: "malformed json", path: "/v1/tools/query", body: `{"query":`, status: http.StatusBadRequest, kind: "invalid_input"},
		{name: "params not array", path: "/v1/tools/query", body: `{"query":"SELECT 1","params":"x"}`, status: http.StatusBadRequest, kind: "invalid_input"},
		{name: "missing table", path: "/v1/tools/query", body: `{"query":"SELECT * FROM nosuchtable"}`, status: http.StatusUnprocessableEntity, kind: "prepare_failed"},
		{name: "arity", path: "/v1/tools/execute", body: `{"statement":"SELECT ?"}`, status: http.StatusUnprocessableEntity, kind: "query_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			errBody := decodeBody(t, rec)["error"].(map[string]any)
			assert.Equal(t, tt.kind, errBody["kind"])
			assert.NotEmpty(t, errBody["message"])
		})
	}
}

func TestCallTool_BodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"query":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	rec := do(t, s, http.MethodPost, "/v1/tools/query", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds")
}

func TestResourcesAndPrompts(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/resources", "")
	assert.JSONEq(t, `{"resources":[]}`, rec.Body.String())
	rec = do(t, s, http.MethodGet, "/v1/prompts", "")
	assert.JSONEq(t, `{"prompts":[]}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/resources/sqlite/main", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"kind":"not_found","message":"resource not found: sqlite/main"}}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/prompts/summarize", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":{"kind":"not_found","message":"prompt not found: summarize"}}`, rec.Body.String())
}

func TestRouting(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/tools/query", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	s, buf := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	id := rec.Header().Get(requestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"path":"/healthz"`)
	assert.Contains(t, buf.String(), `"status":200`)

	inbound := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, inbound)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, inbound, rec.Header().Get(requestIDHeader))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(errs.ErrKindInvalidInput))
	assert.Equal(t, http.StatusNotFound, statusFor(errs.ErrKindNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(errs.ErrKindPrepareFailed))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(errs.ErrKindQueryFailed))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(errs.ErrKindConnectionFailed))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(errs.ErrKindTimeout))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errs.ErrKindUnknown))
}
