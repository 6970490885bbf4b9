package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// NewHTTPMetrics returns a middleware that records per-request Prometheus
// metrics: a request counter and a latency histogram, labelled by method,
// chi route pattern, and status. If reg is nil the default registerer is
// used; already-registered collectors are reused, so the middleware can be
// constructed more than once (e.g. in tests).
func NewHTTPMetrics(reg prometheus.Registerer) (func(http.Handler) http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autolote_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "path", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autolote_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	if err := reg.Register(requests); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			requests = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// The route pattern ("/api/vehicles/{id}/sell") keeps label
			// cardinality bounded; raw paths would explode it.
			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					path = p
				}
			}

			requests.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
			latency.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
	return mw, nil
}
