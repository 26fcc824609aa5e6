package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithMetrics(t *testing.T, method, pattern, target string, status int) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)

	r := chi.NewRouter()
	r.Use(Metrics(metrics))
	r.MethodFunc(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	assert.Equal(t, status, w.Code)
	return reg
}

func TestMetrics_RecordsRequestFamilies(t *testing.T) {
	reg := serveWithMetrics(t, "GET", "/orders/{id}", "/orders/123", http.StatusOK)

	families, err := reg.Gather()
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, mf := range families {
		seen[mf.GetName()] = len(mf.Metric) > 0
	}
	assert.True(t, seen["test_http_requests_total"])
	assert.True(t, seen["test_http_request_duration_seconds"])
}

func TestMetrics_LabelsUseRoutePattern(t *testing.T) {
	reg := serveWithMetrics(t, "GET", "/orders/{id}", "/orders/a2e2cf06", http.StatusNotFound)

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != "test_http_requests_total" {
			continue
		}
		require.Len(t, mf.Metric, 1)
		labels := map[string]string{}
		for _, lp := range mf.Metric[0].Label {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, "/orders/{id}", labels["path"], "must record the pattern, not the raw path")
		assert.Equal(t, "404", labels["status"])
		return
	}
	t.Fatal("test_http_requests_total not gathered")
}

func TestMetrics_StatusCodes(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusConflict, http.StatusBadGateway} {
		serveWithMetrics(t, "POST", "/orders", "/orders", status)
	}
}

func TestMetrics_WithoutChiRouting(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)

	wrapped := Metrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/bare", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusWriter(t *testing.T) {
	w := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

	sw.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, sw.statusCode)
	assert.Equal(t, http.StatusCreated, w.Code)

	w2 := httptest.NewRecorder()
	sw2 := &statusWriter{ResponseWriter: w2, statusCode: http.StatusOK}
	sw2.Write([]byte("body"))
	assert.Equal(t, http.StatusOK, sw2.statusCode)
}
