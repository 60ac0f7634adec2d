// Package metrics exposes Prometheus collectors for the analysis service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchTotal                 *prometheus.CounterVec
	fetchDurationSeconds       *prometheus.HistogramVec
	llmCallsTotal              *prometheus.CounterVec
	llmCallDurationSeconds     *prometheus.HistogramVec
	cacheOpsTotal              *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Fetch outcome labels.
const (
	FetchOK        = "ok"
	FetchHTTPError = "http_error"
	FetchError     = "error"
)

// Init initializes the Prometheus metrics collectors. It is safe to call
// this function multiple times; the Observe helpers call it on first use.
func Init() {
	once.Do(func() {
		fetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoscope_fetch_total",
				Help: "Total number of page fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seoscope_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by outcome.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		)

		llmCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoscope_llm_calls_total",
				Help: "Total number of LLM calls, labeled by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		)

		llmCallDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seoscope_llm_call_duration_seconds",
				Help:    "Histogram of LLM call latencies, labeled by provider and outcome.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "outcome"},
		)

		cacheOpsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoscope_cache_operations_total",
				Help: "Total number of cache lookups, labeled by key prefix and result.",
			},
			[]string{"prefix", "result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records the outcome and latency of a page fetch.
func ObserveFetch(outcome string, duration time.Duration) {
	Init()
	fetchTotal.WithLabelValues(outcome).Inc()
	fetchDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveLLMCall records a provider round trip.
func ObserveLLMCall(provider string, success bool, duration time.Duration) {
	Init()
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	llmCallsTotal.WithLabelValues(provider, outcome).Inc()
	llmCallDurationSeconds.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}

// ObserveCache records a cache lookup as a hit or miss for its key prefix.
func ObserveCache(prefix string, hit bool) {
	Init()
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheOpsTotal.WithLabelValues(prefix, result).Inc()
}

// ObserveHTTPRequest counts a finished request and records its latency.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
