package mws

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())

	collector.RecordRequestStart("ListOrders")
	collector.RecordRequest("ListOrders", 200, 15*time.Millisecond)
	collector.RecordRequest("ListOrders", 503, time.Millisecond)
	collector.RecordThrottle("ListOrders")
	collector.RecordRetry("ListOrders", 2)
	collector.RecordPage("ListOrders")
	collector.RecordPage("ListOrders")
	collector.RecordError("ListOrders", KindRequestThrottled)
	collector.RecordError("ListOrders", "")
	collector.RecordCacheHit("GetReport")
	collector.RecordCacheMiss("GetReport")

	assert.InDelta(t, 1, testutil.ToFloat64(collector.requestsInFlight.WithLabelValues("ListOrders")), 0)
	collector.RecordRequestEnd("ListOrders")
	assert.InDelta(t, 0, testutil.ToFloat64(collector.requestsInFlight.WithLabelValues("ListOrders")), 0)

	assert.InDelta(t, 1, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("ListOrders", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("ListOrders", "503")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.throttledTotal.WithLabelValues("ListOrders")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.retriesTotal.WithLabelValues("ListOrders", "2")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(collector.pagesTotal.WithLabelValues("ListOrders")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.errorsTotal.WithLabelValues("ListOrders", "RequestThrottled")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.errorsTotal.WithLabelValues("ListOrders", "Other")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.cacheHits.WithLabelValues("GetReport")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.cacheMisses.WithLabelValues("GetReport")), 0)
}

func TestMetricsCollector_NilIsNoOp(t *testing.T) {
	t.Parallel()

	var collector *MetricsCollector

	assert.NotPanics(t, func() {
		collector.RecordRequestStart("x")
		collector.RecordRequestEnd("x")
		collector.RecordRequest("x", 200, time.Second)
		collector.RecordThrottle("x")
		collector.RecordRetry("x", 1)
		collector.RecordPage("x")
		collector.RecordError("x", KindNotFound)
		collector.RecordCacheHit("x")
		collector.RecordCacheMiss("x")
	})
}
