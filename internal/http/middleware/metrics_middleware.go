package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

// PrometheusMetrics records request count and latency labelled by the chi
// route pattern, so /recipes/{id} is one series regardless of the id.
func PrometheusMetrics(m *observability.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			m.Begin()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				m.Observe(r.Method, routePattern(r), status, time.Since(start))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
