package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsObserveAndExpose(t *testing.T) {
	m := NewHTTPMetrics()
	m.Begin()
	m.Observe(http.MethodPost, "/auth/login", http.StatusUnauthorized, 20*time.Millisecond)
	m.Begin()
	m.Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/auth/login", "401")); got != 1 {
		t.Fatalf("expected one login request, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Fatalf("expected unmatched route label, got %v", got)
	}
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Fatalf("expected in-flight gauge back to zero, got %v", got)
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Fatal("expected http_requests_total in exposition")
	}
}
