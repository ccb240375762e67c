package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	timeouts     *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	breakerTrips *prometheus.CounterVec
	responses    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpull_cache_hits_total",
				Help: "Cache hits per cache",
			},
			[]string{"cache"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpull_cache_misses_total",
				Help: "Cache misses per cache",
			},
			[]string{"cache"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chartpull_fetch_duration_seconds",
				Help:    "Duration of backing-store fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"store"},
		),
		timeouts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpull_timeouts_total",
				Help: "Deadline-exceeded outcomes per call class",
			},
			[]string{"op"},
		),
		fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpull_fallback_total",
				Help: "Fallback synthesis outcomes",
			},
			[]string{"outcome"},
		),
		breakerTrips: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpull_breaker_trips_total",
				Help: "Circuit breaker entries recorded",
			},
			[]string{"reason"},
		),
		responses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chartpull_responses_total",
				Help: "History responses by status",
			},
			[]string{"status"},
		),
	}
}

// RecordCacheHit records a hit on the named cache.
func (r *Recorder) RecordCacheHit(cache string) {
	r.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a miss on the named cache.
func (r *Recorder) RecordCacheMiss(cache string) {
	r.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordFetchLatency records a backing-store fetch duration in seconds.
func (r *Recorder) RecordFetchLatency(store string, seconds float64) {
	r.fetchLatency.WithLabelValues(store).Observe(seconds)
}

// RecordTimeout records a deadline-exceeded outcome.
func (r *Recorder) RecordTimeout(op string) {
	r.timeouts.WithLabelValues(op).Inc()
}

// RecordFallback records a fallback synthesis outcome.
func (r *Recorder) RecordFallback(outcome string) {
	r.fallbacks.WithLabelValues(outcome).Inc()
}

// RecordBreakerTrip records a circuit breaker entry.
func (r *Recorder) RecordBreakerTrip(reason string) {
	r.breakerTrips.WithLabelValues(reason).Inc()
}

// RecordResponse records a history response by status.
func (r *Recorder) RecordResponse(status string) {
	r.responses.WithLabelValues(status).Inc()
}
