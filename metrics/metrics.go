package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	// HTTP request metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Probe metrics
	heartbeatsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "envprobe_heartbeats_total",
			Help: "Total number of heartbeat marks written to standard output.",
		},
	)
	watchedVariables = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "envprobe_watched_variables",
			Help: "Watched environment variables by state at capture time.",
		},
		[]string{"state"},
	)
	reportTimestampSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "envprobe_report_timestamp_seconds",
			Help: "Unix time at which the environment snapshot was captured.",
		},
	)
)

var initMetricsOnce sync.Once
var registry *prometheus.Registry

// InitMetrics initializes and registers Prometheus metrics.
func InitMetrics() *prometheus.Registry {
	initMetricsOnce.Do(func() {
		registry = prometheus.NewRegistry()

		// Register HTTP metrics
		registry.MustRegister(httpRequestsTotal)
		registry.MustRegister(httpRequestDurationSeconds)

		// Register probe metrics
		registry.MustRegister(heartbeatsTotal)
		registry.MustRegister(watchedVariables)
		registry.MustRegister(reportTimestampSeconds)

		// Register Go runtime metrics
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		log.Info().Msg("Prometheus metrics initialized.")
	})
	return registry
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// IncHeartbeat records one emitted heartbeat mark.
func IncHeartbeat() {
	heartbeatsTotal.Inc()
}

// ObserveSnapshot records the set/unset split and capture time of the
// startup environment snapshot. Called once; the snapshot never changes.
func ObserveSnapshot(set, unset int, takenAt time.Time) {
	watchedVariables.WithLabelValues("set").Set(float64(set))
	watchedVariables.WithLabelValues("unset").Set(float64(unset))
	reportTimestampSeconds.Set(float64(takenAt.Unix()))
}

// HTTPMetricsMiddleware collects HTTP request metrics.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// Use a custom ResponseWriter to capture status code
		lw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lw, r)

		duration := time.Since(start).Seconds()
		method := r.Method
		path := r.URL.Path
		status := strconv.Itoa(lw.statusCode)

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, path).Observe(duration)
	})
}

// loggingResponseWriter is a wrapper to capture the HTTP status code.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}
