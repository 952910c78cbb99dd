package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/api/restaurants")

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `console_http_requests_total{code="418",route="/api/restaurants"} 1`)
	assert.Contains(t, body, `console_http_request_duration_seconds_bucket{route="/api/restaurants"`)
}

func TestListAndMutationCounters(t *testing.T) {
	metrics := NewMetrics()

	metrics.FetchDone("restaurants", "ok", 20*time.Millisecond)
	metrics.FetchDone("restaurants", "stale", 5*time.Millisecond)
	metrics.FetchDone("restaurants", "stale", 5*time.Millisecond)
	metrics.MutationDone("restaurants", "reject", "invalid")

	body := scrape(t, metrics)
	assert.Contains(t, body, `console_list_fetches_total{outcome="stale",screen="restaurants"} 2`)
	assert.Contains(t, body, `console_list_fetches_total{outcome="ok",screen="restaurants"} 1`)
	assert.Contains(t, body, `console_mutations_total{action="reject",outcome="invalid",screen="restaurants"} 1`)
}

func TestBackendAndWorkspaceMetrics(t *testing.T) {
	metrics := NewMetrics()

	metrics.ObserveBackend(http.MethodPatch, 401, time.Millisecond)
	metrics.WorkspaceOpened()
	metrics.WorkspaceOpened()
	metrics.WorkspaceClosed()

	body := scrape(t, metrics)
	assert.Contains(t, body, `console_backend_requests_total{code="401",method="PATCH"} 1`)
	assert.True(t, strings.Contains(body, "console_workspaces_open 1"), body)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.FetchDone("orders", "ok", time.Second)
	m.MutationDone("orders", "status", "ok")
	m.ObserveBackend(http.MethodGet, 200, time.Second)
	m.WorkspaceOpened()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
