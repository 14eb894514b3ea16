package ghclient

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/log"
)

// ErrRateLimited is returned when the GitHub API rate limit has been exceeded.
var ErrRateLimited = errors.New("rate limited")

// RateLimitState tracks the rate limit GitHub reports for one bucket.
type RateLimitState struct {
	mu        sync.RWMutex
	limited   bool
	resetAt   time.Time
	remaining int
	limit     int
	now       func() time.Time
}

func newRateLimitState() *RateLimitState {
	return &RateLimitState{remaining: -1, limit: -1, now: time.Now}
}

// IsLimited returns true if we are currently rate limited.
func (s *RateLimitState) IsLimited() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limited && s.now().Before(s.resetAt)
}

// SetLimited marks the client as limited until resetAt.
func (s *RateLimitState) SetLimited(resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limited = true
	s.resetAt = resetAt
}

// Update records the values from a response's rate limit headers.
func (s *RateLimitState) Update(remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining = remaining
	s.limit = limit
	s.resetAt = resetAt
	s.limited = remaining == 0
}

// GitHub rate limit buckets, as named by the X-RateLimit-Resource header.
const (
	ResourceCore   = "core"
	ResourceSearch = "search"
)

// rateLimits keeps one RateLimitState per GitHub rate limit bucket. Search
// and core quotas are independent, so exhausting one never blocks the other.
type rateLimits struct {
	mu      sync.Mutex
	buckets map[string]*RateLimitState
}

func newRateLimits() *rateLimits {
	return &rateLimits{buckets: make(map[string]*RateLimitState)}
}

// bucket returns the state for resource, creating it on first use.
func (r *rateLimits) bucket(resource string) *RateLimitState {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.buckets[resource]
	if !ok {
		s = newRateLimitState()
		r.buckets[resource] = s
	}
	return s
}

// Status reports a limited bucket if there is one, search first, and
// otherwise the search bucket.
func (r *rateLimits) Status() RateLimitStatus {
	search := r.bucket(ResourceSearch).Status()
	if search.Limited {
		return search
	}
	if core := r.bucket(ResourceCore).Status(); core.Limited {
		return core
	}
	return search
}

// resourceFor maps a request to the bucket GitHub charges it against.
func resourceFor(req *http.Request) string {
	if strings.Contains(req.URL.Path, "/search/") {
		return ResourceSearch
	}
	return ResourceCore
}

// RateLimitStatus is a point-in-time copy of RateLimitState.
type RateLimitStatus struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
	Limited   bool
}

// Status returns the last observed rate limit values.
func (s *RateLimitState) Status() RateLimitStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RateLimitStatus{
		Remaining: s.remaining,
		Limit:     s.limit,
		ResetAt:   s.resetAt,
		Limited:   s.limited && s.now().Before(s.resetAt),
	}
}

// rateLimitTransport wraps an http.RoundTripper to track GitHub rate limits
// and to refuse requests while the current window is exhausted.
type rateLimitTransport struct {
	base   http.RoundTripper
	limits *rateLimits
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resource := resourceFor(req)
	if t.limits.bucket(resource).IsLimited() {
		return nil, ErrRateLimited
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	// The response names its bucket; trust it over the path guess.
	if v := resp.Header.Get("X-RateLimit-Resource"); v != "" {
		resource = v
	}
	state := t.limits.bucket(resource)

	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		state.Update(remaining, limit, resetAt)
	}

	if remaining <= constants.RateLimitLowWatermark && remaining > 0 {
		log.Debug("rate limit low", "resource", resource, "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	if resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
		state.SetLimited(resetAt)
		_ = resp.Body.Close()
		return nil, ErrRateLimited
	}

	return resp, nil
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining = -1
	limit = -1

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = n
		}
	}

	if v := resp.Header.Get("X-RateLimit-Limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			resetAt = time.Unix(sec, 0)
		}
	}

	return remaining, limit, resetAt
}
