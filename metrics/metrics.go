// Package metrics provides Prometheus metrics for the Azure DevOps MCP server.
// It tracks tool calls, Azure DevOps API latency, handshakes and session reuse.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "azure_devops_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// APILatency measures Azure DevOps API call latency by area and action
	APILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "api_latency_seconds",
		Help:      "Azure DevOps API call latency by area and action",
		Buckets:   prometheus.DefBuckets,
	}, []string{"area", "action"})

	// APIRequestsTotal counts Azure DevOps API requests
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total Azure DevOps API requests by area, action and status",
	}, []string{"area", "action", "status"})

	// APIErrors counts Azure DevOps API errors by error kind
	APIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_errors_total",
		Help:      "Azure DevOps API errors by area, action and error kind",
	}, []string{"area", "action", "kind"})

	// Handshakes counts connection handshakes by outcome
	Handshakes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "handshakes_total",
		Help:      "Connection handshakes by outcome",
	}, []string{"status"})

	// HandshakeDuration measures handshake latency
	HandshakeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "handshake_duration_seconds",
		Help:      "Connection handshake latency",
		Buckets:   prometheus.DefBuckets,
	})

	// AuthFailures counts authentication failures
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "auth_failures_total",
		Help:      "Authentication failure count by reason",
	}, []string{"reason"})

	// CacheHits counts session and project cache hits
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_hits_total",
		Help:      "Total cache hit count by cache",
	}, []string{"cache"})

	// CacheMisses counts session and project cache misses
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_misses_total",
		Help:      "Total cache miss count by cache",
	}, []string{"cache"})

	// SessionInvalidations counts sessions dropped before their TTL
	SessionInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "session_invalidations_total",
		Help:      "Sessions dropped before expiry by reason",
	}, []string{"reason"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// EditOperations counts wiki write operations by type
	EditOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "edit_operations_total",
		Help:      "Wiki write operations by type and status",
	}, []string{"operation", "status"})

	// ContentSize tracks wiki content sizes processed
	ContentSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "content_size_bytes",
		Help:      "Wiki content size distribution in bytes",
		Buckets:   []float64{100, 1000, 10000, 50000, 100000, 250000, 500000, 1000000},
	}, []string{"operation"})
)

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordRequest records a completed request with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, status(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records an Azure DevOps API call. errorKind is empty on success.
func RecordAPICall(area, action string, duration float64, errorKind string) {
	APIRequestsTotal.WithLabelValues(area, action, status(errorKind == "")).Inc()
	APILatency.WithLabelValues(area, action).Observe(duration)
	if errorKind != "" {
		APIErrors.WithLabelValues(area, action, errorKind).Inc()
	}
}

// RecordHandshake records a connection handshake
func RecordHandshake(duration float64, success bool) {
	Handshakes.WithLabelValues(status(success)).Inc()
	HandshakeDuration.Observe(duration)
}

// RecordCacheAccess records a cache hit or miss for the named cache
func RecordCacheAccess(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// RecordEdit records a wiki write and the size of the written content
func RecordEdit(operation string, contentBytes int, success bool) {
	EditOperations.WithLabelValues(operation, status(success)).Inc()
	if success {
		ContentSize.WithLabelValues(operation).Observe(float64(contentBytes))
	}
}
