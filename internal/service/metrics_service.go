package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "attendance"

// MetricsService owns a private Prometheus registry for the HTTP surface, the
// aggregate cache and the attendance ledger. A nil *MetricsService is a no-op.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	cacheLookups  *prometheus.CounterVec
	cacheDuration *prometheus.HistogramVec

	ledgerQueries *prometheus.HistogramVec
	upserts       *prometheus.CounterVec
}

// NewMetricsService registers the collectors, including the Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Summary and stats cache lookups by result (hit or miss)",
		}, []string{"result"}),
		cacheDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operation_duration_seconds",
			Help:      "Latency of cache reads and writes",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"op"}),
		ledgerQueries: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "ledger",
			Name:      "query_duration_seconds",
			Help:      "Duration of attendance ledger queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upserts_total",
			Help:      "Attendance upserts by outcome (created or updated)",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.cacheLookups,
		m.cacheDuration,
		m.ledgerQueries,
		m.upserts,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics. path must be a route pattern, not a raw URL.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation counts a cache lookup as hit or miss and records its latency.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
	m.cacheDuration.WithLabelValues("get").Observe(duration.Seconds())
}

// ObserveCacheWrite records the latency of a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheDuration.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveDBQuery records ledger query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ledgerQueries.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordUpsert counts a ledger upsert as created or updated.
func (m *MetricsService) RecordUpsert(created bool) {
	if m == nil {
		return
	}
	result := "updated"
	if created {
		result = "created"
	}
	m.upserts.WithLabelValues(result).Inc()
}
