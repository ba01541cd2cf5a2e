package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the HTTP API. Each server
// owns its registry so tests can spin up servers independently.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  prometheus.Histogram
	matchQueries     prometheus.Counter
	matchEmpty       prometheus.Counter
	evaluationsTotal *prometheus.CounterVec
	feedbackTotal    *prometheus.CounterVec
}

// NewMetrics creates the instruments on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_milliseconds",
				Help:    "HTTP request duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		matchQueries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "title_match_queries_total",
				Help: "Total number of title match queries",
			},
		),
		matchEmpty: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "title_match_empty_total",
				Help: "Total number of title match queries with no results",
			},
		),
		evaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salary_evaluations_total",
				Help: "Total number of salary evaluations by verdict",
			},
			[]string{"verdict"},
		),
		feedbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedback_submissions_total",
				Help: "Total number of feedback submissions by forwarding outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler serves the /metrics endpoint for this server's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withMetrics records request counts and durations.
func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.metrics.requestsTotal.WithLabelValues(
			r.Method, routeLabel(r.URL.Path), strconv.Itoa(rec.status),
		).Inc()
		s.metrics.requestDuration.Observe(float64(time.Since(start).Milliseconds()))
	})
}

// routeLabel collapses parameterized paths so label cardinality stays bounded.
func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/sessions/"):
		return "/sessions/{id}"
	case strings.HasPrefix(path, "/occupations/"):
		return "/occupations/{code}"
	default:
		return path
	}
}
