// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	WSClients    prometheus.Gauge
	WSBroadcasts prometheus.Counter

	// Projection metrics
	ProjectionRuns     *prometheus.CounterVec
	ProjectionDuration prometheus.Histogram
	ProjectionSamples  prometheus.Histogram
	ProjectionCacheHit *prometheus.CounterVec

	// Archive metrics
	ArchiveRuns    *prometheus.CounterVec
	ArchiveSamples prometheus.Counter

	// Database metrics
	DBQueryErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "doselog"
	}

	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		WSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "ws_clients",
			Help:      "Number of connected WebSocket clients",
		}),
		WSBroadcasts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "ws_broadcasts_total",
			Help:      "Total number of change notifications broadcast",
		}),

		ProjectionRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "runs_total",
			Help:      "Total number of projection computations by trigger",
		}, []string{"trigger"}),
		ProjectionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "duration_seconds",
			Help:      "Projection computation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		ProjectionSamples: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "samples",
			Help:      "Number of samples produced per projection",
			Buckets:   []float64{10, 25, 50, 100, 200, 500},
		}),
		ProjectionCacheHit: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "cache_lookups_total",
			Help:      "Projection cache lookups by result",
		}, []string{"result"}),

		ArchiveRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "runs_total",
			Help:      "Total number of archive runs by status",
		}, []string{"status"}),
		ArchiveSamples: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "samples_total",
			Help:      "Total number of samples archived",
		}),

		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route, status string, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, status).Inc()
	DefaultMetrics.HTTPDuration.WithLabelValues(route).Observe(seconds)
}

// RecordProjection records one projection computation.
func RecordProjection(trigger string, sampleCount int, seconds float64) {
	DefaultMetrics.ProjectionRuns.WithLabelValues(trigger).Inc()
	DefaultMetrics.ProjectionDuration.Observe(seconds)
	DefaultMetrics.ProjectionSamples.Observe(float64(sampleCount))
}

// RecordCacheLookup records a projection cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DefaultMetrics.ProjectionCacheHit.WithLabelValues(result).Inc()
}

// RecordArchiveRun records one archive run.
func RecordArchiveRun(status string, samples int) {
	DefaultMetrics.ArchiveRuns.WithLabelValues(status).Inc()
	if samples > 0 {
		DefaultMetrics.ArchiveSamples.Add(float64(samples))
	}
}

// RecordDBError records a database query error.
func RecordDBError(database, operation string) {
	DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
}

// SetWSClients updates the connected WebSocket client gauge.
func SetWSClients(n int) {
	DefaultMetrics.WSClients.Set(float64(n))
}

// RecordWSBroadcast increments the broadcast counter.
func RecordWSBroadcast() {
	DefaultMetrics.WSBroadcasts.Inc()
}
