// Package constants provides a centralized location for the limits, defaults
// and magic numbers used throughout repofinder.
package constants

import "time"

// TUI update and display constants
const (
	// TUIUpdateInterval is the minimum time between TUI progress updates.
	TUIUpdateInterval = 50 * time.Millisecond

	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 5
)

// Search request defaults and bounds
const (
	DefaultPerPage          = 12
	MaxPerPage              = 50
	DefaultLimit            = 10
	MaxLimit                = 50
	DefaultPushedWithinDays = 1825
	MaxPushedWithinDays     = 3650

	// SortBest lets GitHub rank by relevance; no sort parameter is sent.
	SortBest = "best"
)

// Pipeline constants
const (
	// MaxIntentKeywords caps the keywords kept on a parsed intent.
	MaxIntentKeywords = 6

	// MinLLMKeywords is the keyword count below which the model's intent is
	// merged with the heuristic one.
	MinLLMKeywords = 3

	// SearchKeywords is how many intent keywords the first search uses.
	SearchKeywords = 4

	// NarrowedKeywords is how many keywords the single narrowing retry uses.
	NarrowedKeywords = 2

	// MaxTopicQualifiers caps topic: qualifiers in a query.
	MaxTopicQualifiers = 3

	// DefaultRecommendCount is how many repositories the model is asked to suggest.
	DefaultRecommendCount = 5
)

// Cache constants
const (
	// DefaultCacheTTL is how long a finished SearchResponse stays reusable.
	DefaultCacheTTL = 1 * time.Hour

	// DefaultCacheEntries bounds the in-memory response cache.
	DefaultCacheEntries = 1024
)

// Upstream transport constants
const (
	DefaultGitHubBaseURL = "https://api.github.com/"
	DefaultGitHubTimeout = 20 * time.Second

	DefaultLLMBaseURL     = "https://api.openai.com/v1"
	DefaultLLMModel       = "gpt-4o-mini"
	DefaultLLMTemperature = 0.3
	DefaultLLMTimeout     = 20 * time.Second
	DefaultLLMMaxRetries  = 2

	// UserAgent is sent on every upstream request.
	UserAgent = "repofinder"
)

// Server constants
const (
	DefaultServerAddr        = ":8000"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
)
