package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automationvault_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "automationvault_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DownloadsTotal counts Record outcomes: recorded, duplicate, failed.
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automationvault_downloads_total",
			Help: "Download attempts by outcome.",
		},
		[]string{"outcome"},
	)

	CatalogCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automationvault_catalog_cache_total",
			Help: "Catalog cache lookups by result.",
		},
		[]string{"result"},
	)

	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automationvault_llm_requests_total",
			Help: "LLM calls by provider and status.",
		},
		[]string{"provider", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "automationvault_llm_request_duration_seconds",
			Help:    "LLM call latency.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	ClassificationFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "automationvault_classification_fallbacks_total",
			Help: "Uploaded workflows classified with the mechanical fallback.",
		},
	)

	CheckoutSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automationvault_checkout_sessions_total",
			Help: "Checkout sessions created by plan.",
		},
		[]string{"plan"},
	)
)
