package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

func TestPrometheusMetricsLabelsByRoutePattern(t *testing.T) {
	m := observability.NewHTTPMetrics()
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(m))
	r.Get("/recipes/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/recipes/"+id, nil))
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	want := `http_requests_total{code="404",method="GET",route="/recipes/{id}"} 2`
	if !strings.Contains(body, want) {
		t.Fatalf("expected %q in exposition:\n%s", want, body)
	}
}
