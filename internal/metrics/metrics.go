package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bridge"

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, including pacing delay.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 45},
	}, []string{"method", "route"})

	// Model provider
	ModelRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_requests_total",
		Help:      "Successful model round trips by model.",
	}, []string{"model"})

	ModelErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_errors_total",
		Help:      "Failed model round trips by reason.",
	}, []string{"reason"})

	ModelLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_latency_seconds",
		Help:      "Model round trip latency.",
		Buckets:   []float64{0.5, 1, 2, 3, 5, 8, 13, 21, 34},
	})

	// Output handling
	JSONExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "json_extractions_total",
		Help:      "Model output JSON extractions by recovery tier (direct, fenced, embedded, failed).",
	}, []string{"tier"})

	NormalizerCorrectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "normalizer_corrections_total",
		Help:      "Model-supplied fields that were clamped, coerced or defaulted.",
	}, []string{"field"})

	// Pacing
	PacingDelay = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pacing_delay_seconds",
		Help:      "Delay added by the response pacer.",
		Buckets:   []float64{0, 0.05, 0.1, 0.25, 0.5, 0.75, 1, 2},
	})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-client rate limiter.",
	})

	// Temp store
	TempStoreFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "temp_store_files",
		Help:      "Files remaining in the temp store after the last sweep.",
	})

	TempStoreBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "temp_store_bytes",
		Help:      "Bytes remaining in the temp store after the last sweep.",
	})

	TempFilesReclaimedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "temp_files_reclaimed_total",
		Help:      "Temp files deleted by the reclaimer.",
	})

	TempFilesWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "temp_files_written_total",
		Help:      "Preprocessed images written to the temp store.",
	})

	// Analysis cache
	AnalysisCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_cache_hits_total",
		Help:      "Analysis cache hits.",
	})

	AnalysisCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_cache_misses_total",
		Help:      "Analysis cache misses, including expired entries.",
	})
)
