package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dealroom/pkg/trace"
	"dealroom/pkg/util"
)

const secret = "router-secret"

func init() { gin.SetMode(gin.TestMode) }

// Handler fields stay nil: every request below is answered by middleware or health checks.
func newTestRouter(ready map[string]ReadyCheck) *gin.Engine {
	return NewRouter(Handlers{}, secret, ready, zap.NewNop()).Engine
}

func get(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := util.GenerateJWT("u1", role, "u1@example.com", secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestRouter_RequiresToken(t *testing.T) {
	r := newTestRouter(nil)

	w := get(t, r, "/investor/discovery", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(t, r, "/investor/discovery", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RoleGroups(t *testing.T) {
	r := newTestRouter(nil)

	w := get(t, r, "/investor/discovery", token(t, "founder"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())

	w = get(t, r, "/admin/thresholds", token(t, "investor"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_HealthAndReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	r := newTestRouter(map[string]ReadyCheck{"db": ok})
	w := get(t, r, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"service":"backend"}`, w.Body.String())
	assert.Equal(t, http.StatusOK, get(t, r, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, get(t, r, "/readyz", "").Code)

	r = newTestRouter(map[string]ReadyCheck{"redis": down})
	w = get(t, r, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis_not_ready")
}

func TestRouter_TraceHeaderAndNotFound(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set(trace.HeaderName, "abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "abc123", w.Header().Get(trace.HeaderName))

	w = get(t, r, "/health", "")
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName))
}

func TestRouter_ServesMetrics(t *testing.T) {
	r := newTestRouter(nil)
	_ = get(t, r, "/health", "")

	w := get(t, r, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

func TestRouter_PermissionTable(t *testing.T) {
	r := newTestRouter(nil)

	cases := []struct {
		method, path, role string
	}{
		{http.MethodPatch, "/tasks/t1", "investor"},
		{http.MethodPost, "/quotes/projects/p1/rfq", "investor"},
		{http.MethodPost, "/quotes/projects/p1/rfq", "expert"},
		{http.MethodPost, "/shortlist/projects/p1/invite", "expert"},
		{http.MethodPost, "/shortlist/projects/p1/invite", "investor"},
		{http.MethodPatch, "/shortlist/shortlists/s1", "founder"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path+" as "+tc.role, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+token(t, tc.role))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
		})
	}
}
