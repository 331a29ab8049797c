package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"method", "route"})

	llmRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_requests_total",
		Help: "LLM generations by operation and outcome.",
	}, []string{"operation", "outcome"})

	llmFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_fallbacks_total",
		Help: "Operations answered with mock data after the LLM output was unusable.",
	}, []string{"operation"})

	quotaConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quota_consumed_total",
		Help: "Scans charged against monthly quotas.",
	})
	rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter, by group.",
	}, []string{"group"})
	panics = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_panics_total",
		Help: "Handler panics recovered by middleware.",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		llmRequests,
		llmFallbacks,
		quotaConsumed,
		rateLimited,
		panics,
	)
}

// ObserveHTTPRequest records a completed request.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// IncLLMRequest counts an LLM call. outcome is "ok" or "error".
func IncLLMRequest(operation, outcome string) {
	llmRequests.WithLabelValues(operation, outcome).Inc()
}

// IncLLMFallback counts a mock answer for operation.
func IncLLMFallback(operation string) {
	llmFallbacks.WithLabelValues(operation).Inc()
}

// IncQuotaConsumed counts a charged scan.
func IncQuotaConsumed() {
	quotaConsumed.Inc()
}

// IncRateLimited counts a request rejected in group.
func IncRateLimited(group string) {
	rateLimited.WithLabelValues(group).Inc()
}

// IncPanic counts a recovered handler panic.
func IncPanic() {
	panics.Inc()
}

// Registry exposes the collector registry for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
