package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalTransitionsAreCountedPerOutcome(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveJournalTransition("post", "ok")
	metrics.ObserveJournalTransition("post", "ok")
	metrics.ObserveJournalTransition("post", "conflict")
	metrics.ObserveJournalTransition("void", "rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.journalTransitions.WithLabelValues("post", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.journalTransitions.WithLabelValues("post", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.journalTransitions.WithLabelValues("void", "rejected")))

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `odyssey_journal_transitions_total{operation="post",outcome="ok"} 2`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveJournalTransition("post", "ok")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	called := false
	metrics.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/api/v1/journals/{id}/post")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journals/7b0c/post", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("/api/v1/journals/{id}/post", "409")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.requestDuration))
}
