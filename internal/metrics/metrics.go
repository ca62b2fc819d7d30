package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Business metrics. Registered once via Register; tests can register
// into their own registry.
var (
	ScansCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wfip_scans_completed_total",
			Help: "Total number of scans completed",
		},
		[]string{"scan_type"},
	)

	UsagesDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wfip_feature_usages_detected_total",
			Help: "Total number of feature usages detected across all scans",
		},
	)

	CrawlPages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wfip_crawl_pages_total",
			Help: "Total number of pages fetched by the crawler",
		},
	)

	NotificationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wfip_notifications_failed_total",
			Help: "Total number of notification deliveries that failed",
		},
		[]string{"provider"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Register registers all metrics with the given registerer. Call once at
// startup with prometheus.DefaultRegisterer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		ScansCompleted,
		UsagesDetected,
		CrawlPages,
		NotificationsFailed,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// RequestTrackingMiddleware tracks HTTP request counts and durations.
func RequestTrackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rw.statusCode)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// responseWriter is a wrapper to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
