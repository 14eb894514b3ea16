package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("miss"))

	CacheLookup(true)
	CacheLookup(false)
	CacheLookup(false)

	if got := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("hit")) - hits; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("miss")) - misses; got != 2 {
		t.Errorf("miss delta = %v, want 2", got)
	}
}

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(searchesTotal.WithLabelValues("batch", "ok"))
	ObserveSearch("batch", "ok", 150*time.Millisecond, 7)
	if got := testutil.ToFloat64(searchesTotal.WithLabelValues("batch", "ok")) - before; got != 1 {
		t.Errorf("searches delta = %v, want 1", got)
	}
}

func TestHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/health", "GET", "200"))
	HTTPRequest("/health", "GET", 200)
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/health", "GET", "200")) - before; got != 1 {
		t.Errorf("requests delta = %v, want 1", got)
	}
}

func TestWatchCache(t *testing.T) {
	t.Cleanup(func() { WatchCache(nil) })

	if got := cacheStat(false); got != 0 {
		t.Errorf("cacheStat(false) without a source = %v, want 0", got)
	}

	WatchCache(func() (int, int) { return 3, 1 })
	if got := cacheStat(false); got != 3 {
		t.Errorf("live entries = %v, want 3", got)
	}
	if got := cacheStat(true); got != 1 {
		t.Errorf("expired entries = %v, want 1", got)
	}

	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer,
		"repofinder_cache_entries", "repofinder_cache_expired_entries")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if n != 2 {
		t.Errorf("gathered %d cache series, want 2", n)
	}
}
