// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "repofinder"

var (
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Search pipeline runs by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	searchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search pipeline latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"mode"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		},
		[]string{"result"},
	)

	stageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stage failures, fatal or recovered.",
		},
		[]string{"stage"},
	)

	resultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_returned",
			Help:      "Number of repositories in each finished response.",
			Buckets:   prometheus.LinearBuckets(0, 5, 11),
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)
)

// CacheStatsFunc reports the live and expired entries of the response cache.
type CacheStatsFunc func() (live, expired int)

var cacheStats atomic.Pointer[CacheStatsFunc]

var (
	_ = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Live entries in the response cache.",
		},
		func() float64 { return cacheStat(false) },
	)

	_ = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_expired_entries",
			Help:      "Expired entries still held by the response cache.",
		},
		func() float64 { return cacheStat(true) },
	)
)

// WatchCache makes the cache gauges read from fn. A later call replaces
// the source.
func WatchCache(fn CacheStatsFunc) {
	cacheStats.Store(&fn)
}

func cacheStat(expired bool) float64 {
	fn := cacheStats.Load()
	if fn == nil || *fn == nil {
		return 0
	}
	live, stale := (*fn)()
	if expired {
		return float64(stale)
	}
	return float64(live)
}

// ObserveSearch records a finished pipeline run.
func ObserveSearch(mode, outcome string, elapsed time.Duration, results int) {
	searchesTotal.WithLabelValues(mode, outcome).Inc()
	searchDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if outcome == "ok" {
		resultsReturned.Observe(float64(results))
	}
}

// CacheLookup records a cache hit or miss.
func CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// StageFailure records a failed pipeline stage.
func StageFailure(stage string) {
	stageFailuresTotal.WithLabelValues(stage).Inc()
}

// HTTPRequest records a served request.
func HTTPRequest(route, method string, code int) {
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}
