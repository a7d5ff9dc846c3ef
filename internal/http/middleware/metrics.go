// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation. Metrics() measures HTTP
// request counts, latencies, in-flight concurrency, and response sizes with
// bounded label cardinality:
//
//   - method: HTTP method verb (GET/POST)
//   - path:   the registered Gin route, falling back to the raw URL path
//     when no route matched
//   - status: numeric status code as a string
//
// Beyond HTTP traffic, this file also carries the event-pipeline counters
// incremented by the webhook handler: deliveries received by event type,
// duplicates dropped by the recency cache, and processing failures.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpReqs counts requests by method, route path, and status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route path.
	// Status is omitted to keep histogram cardinality lower.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// httpInflight gauges the number of in-flight requests.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// httpRespSize captures response sizes in bytes, tuned for small JSON
	// payloads.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10,
				10 << 10, 25 << 10, 50 << 10,
				100 << 10, 250 << 10, 500 << 10,
			},
		},
		[]string{"method", "path"},
	)

	// eventsReceived counts verified event deliveries by inner event type.
	eventsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slack_events_received_total",
			Help: "Total number of event callbacks received, by event type.",
		},
		[]string{"type"},
	)

	// eventsDuplicate counts deliveries dropped by the recency cache.
	eventsDuplicate = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "slack_events_duplicate_total",
			Help: "Total number of redelivered event callbacks dropped.",
		},
	)

	// eventsFailed counts events whose processing returned an error.
	eventsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "slack_events_failed_total",
			Help: "Total number of event callbacks that failed processing.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpReqs, httpLat, httpInflight, httpRespSize,
		eventsReceived, eventsDuplicate, eventsFailed,
	)
}

// Metrics returns a Gin middleware that instruments requests with
// Prometheus. The "path" label uses the registered route to avoid unbounded
// cardinality from raw URLs.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		size := c.Writer.Size() // -1 when unknown

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(dur)
		if size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}

// CountEventReceived records a verified delivery of the given event type.
func CountEventReceived(eventType string) {
	eventsReceived.WithLabelValues(eventType).Inc()
}

// CountEventDuplicate records a delivery dropped as a duplicate.
func CountEventDuplicate() {
	eventsDuplicate.Inc()
}

// CountEventFailed records an event whose processing returned an error.
func CountEventFailed() {
	eventsFailed.Inc()
}
