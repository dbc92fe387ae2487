package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/kakeibo/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(m).Wrap)
	r.Get("/api/v1/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"01HX", "01HY"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	counter := m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/transactions/{id}", "418")
	if got := testutil.ToFloat64(counter); got != 2 {
		t.Fatalf("expected counter to be 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPInFlight); got != 0 {
		t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
	}
}

func TestMetricsMiddlewareUnmatchedRoute(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(m).Wrap)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	counter := m.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")
	if got := testutil.ToFloat64(counter); got != 1 {
		t.Fatalf("expected unmatched counter to be 1, got %v", got)
	}
}
