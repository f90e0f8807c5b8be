package mws

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector records Prometheus metrics per operation. It is safe for
// concurrent use and nil-safe: every method on a nil collector is a no-op.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	throttledTotal   *prometheus.CounterVec
	retriesTotal     *prometheus.CounterVec
	pagesTotal       *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector on the supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(registry)

	return &MetricsCollector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mws_requests_total",
				Help: "Total number of HTTP requests sent",
			},
			[]string{"operation", "status_code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mws_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "status_code"},
		),
		requestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mws_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
			[]string{"operation"},
		),
		throttledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mws_throttled_total",
				Help: "Total number of throttling rejections",
			},
			[]string{"operation"},
		),
		retriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mws_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"operation", "attempt"},
		),
		pagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mws_pages_total",
				Help: "Total number of result pages fetched",
			},
			[]string{"operation"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mws_errors_total",
				Help: "Total number of failed calls by error kind",
			},
			[]string{"operation", "kind"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mws_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"operation"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mws_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"operation"},
		),
	}
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(operation string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	status := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(operation, status).Inc()
	mc.requestDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordRequestStart increments the in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(operation string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(operation).Inc()
}

// RecordRequestEnd decrements the in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(operation string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(operation).Dec()
}

// RecordThrottle counts a throttling rejection.
func (mc *MetricsCollector) RecordThrottle(operation string) {
	if mc == nil {
		return
	}

	mc.throttledTotal.WithLabelValues(operation).Inc()
}

// RecordRetry counts a retry attempt.
func (mc *MetricsCollector) RecordRetry(operation string, attempt int) {
	if mc == nil {
		return
	}

	mc.retriesTotal.WithLabelValues(operation, strconv.Itoa(attempt)).Inc()
}

// RecordPage counts a fetched page.
func (mc *MetricsCollector) RecordPage(operation string) {
	if mc == nil {
		return
	}

	mc.pagesTotal.WithLabelValues(operation).Inc()
}

// RecordError counts a failed call.
func (mc *MetricsCollector) RecordError(operation string, kind ErrorKind) {
	if mc == nil {
		return
	}

	if kind == "" {
		kind = "Other"
	}

	mc.errorsTotal.WithLabelValues(operation, string(kind)).Inc()
}

// RecordCacheHit counts a cache hit.
func (mc *MetricsCollector) RecordCacheHit(operation string) {
	if mc == nil {
		return
	}

	mc.cacheHits.WithLabelValues(operation).Inc()
}

// RecordCacheMiss counts a cache miss.
func (mc *MetricsCollector) RecordCacheMiss(operation string) {
	if mc == nil {
		return
	}

	mc.cacheMisses.WithLabelValues(operation).Inc()
}
