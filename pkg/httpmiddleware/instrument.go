package httpmiddleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument records a request counter and a duration histogram for every
// request, labeled by method and status code. Route-level labels come from
// the otelhttp handler wrapping the mux; this middleware adds the cheap
// always-on counters used by dashboards.
func Instrument(serviceName string, provider metric.MeterProvider) Middleware {
	meter := provider.Meter(serviceName)

	requests, _ := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of processed HTTP requests"))
	duration, _ := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", sw.status),
			)
			requests.Add(r.Context(), 1, attrs)
			duration.Record(r.Context(), time.Since(start).Seconds(), attrs)
		})
	}
}
