// Package cache holds finished search responses in memory, keyed on the
// original query text, with per-entry TTL expiry.
package cache

import (
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/model"
)

// Cacher defines the interface for response caching.
// This interface enables mocking the cache in unit tests.
type Cacher interface {
	Get(key string) (model.SearchResponse, bool)
	Set(key string, value model.SearchResponse, ttl time.Duration)
	Len() int
	Clear()
}

// Ensure Cache implements Cacher interface.
var _ Cacher = (*Cache)(nil)

// entry is one cached response and the moment it stops being valid.
type entry struct {
	expiresAt time.Time
	value     model.SearchResponse
}

// Cache is a bounded, process-lifetime response cache. Expired entries are
// removed lazily when read; there is no background sweep. The underlying
// LRU is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache holding at most size entries. A non-positive size
// uses the default capacity.
func New(size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = constants.DefaultCacheEntries
	}
	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}
	c := &Cache{entries: entries, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the live response stored under key. An expired entry is
// deleted and reported as absent.
func (c *Cache) Get(key string) (model.SearchResponse, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return model.SearchResponse{}, false
	}
	if c.now().After(e.expiresAt) {
		c.entries.Remove(key)
		return model.SearchResponse{}, false
	}
	return cloneResponse(e.value), true
}

// Set stores value under key for ttl, replacing any previous entry.
func (c *Cache) Set(key string, value model.SearchResponse, ttl time.Duration) {
	c.entries.Add(key, entry{
		expiresAt: c.now().Add(ttl),
		value:     cloneResponse(value),
	})
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.entries.Purge()
}

// Stats contains cache statistics
type Stats struct {
	Entries int
	Live    int
	Expired int
}

// Stats counts live and expired entries without evicting anything.
func (c *Cache) Stats() Stats {
	now := c.now()
	var s Stats
	for _, key := range c.entries.Keys() {
		e, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		s.Entries++
		if now.After(e.expiresAt) {
			s.Expired++
		} else {
			s.Live++
		}
	}
	return s
}

// cloneResponse copies the slices of a response so cached values cannot be
// mutated through a caller's reference.
func cloneResponse(r model.SearchResponse) model.SearchResponse {
	out := model.SearchResponse{
		Query:          r.Query,
		IntentKeywords: slices.Clone(r.IntentKeywords),
	}
	if r.Results != nil {
		out.Results = make([]model.RepoResult, len(r.Results))
		for i, res := range r.Results {
			res.Topics = slices.Clone(res.Topics)
			out.Results[i] = res
		}
	}
	return out
}
