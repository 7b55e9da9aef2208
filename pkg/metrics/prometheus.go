package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records provider and reconciliation metrics with Prometheus.
type Recorder struct {
	providerRequests *prometheus.CounterVec
	providerErrors   *prometheus.CounterVec
	analyzeDuration  *prometheus.HistogramVec
	cacheHits        *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "takestock_provider_requests_total",
				Help: "Total number of provider API calls",
			},
			[]string{"provider", "call"},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "takestock_provider_errors_total",
				Help: "Total number of provider failures by error kind",
			},
			[]string{"provider", "kind"},
		),
		analyzeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "takestock_analyze_duration_seconds",
				Help:    "End-to-end duration of analysis requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "takestock_cache_events_total",
				Help: "Unified-record cache hits and misses",
			},
			[]string{"event"},
		),
	}
}

// RecordProviderRequest counts one vendor API call.
func (r *Recorder) RecordProviderRequest(provider, call string) {
	r.providerRequests.WithLabelValues(provider, call).Inc()
}

// RecordProviderError counts a provider failure by kind.
func (r *Recorder) RecordProviderError(provider, kind string) {
	r.providerErrors.WithLabelValues(provider, kind).Inc()
}

// RecordAnalyzeDuration records the latency of one analysis request.
func (r *Recorder) RecordAnalyzeDuration(outcome string, seconds float64) {
	r.analyzeDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordCacheEvent counts a cache hit or miss.
func (r *Recorder) RecordCacheEvent(event string) {
	r.cacheHits.WithLabelValues(event).Inc()
}
