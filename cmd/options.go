package cmd

// Options holds the command-line options for the search command.
type Options struct {
	Format       string
	Limit        int
	PerPage      int
	PushedWithin string
	MinStars     int
	Sort         string
	Filters      []string
	NoCache      bool
	Stream       bool
	Verbosity    int
	TUI          *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Search scope; all enabled unless a --no-* flag is passed
	NoName        bool
	NoDescription bool
	NoReadme      bool
	NoTopics      bool

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithLimit sets the maximum number of results.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// WithPushedWithin sets the recency window (e.g., "90", "6mo", "2y").
func WithPushedWithin(window string) Option {
	return func(o *Options) {
		o.PushedWithin = window
	}
}

// WithMinStars sets the minimum star count.
func WithMinStars(stars int) Option {
	return func(o *Options) {
		o.MinStars = stars
	}
}

// WithSort sets the GitHub sort order.
func WithSort(sort string) Option {
	return func(o *Options) {
		o.Sort = sort
	}
}

// WithFilters appends raw GitHub qualifiers.
func WithFilters(filters ...string) Option {
	return func(o *Options) {
		o.Filters = append(o.Filters, filters...)
	}
}

// WithNoCache bypasses the response cache.
func WithNoCache(noCache bool) Option {
	return func(o *Options) {
		o.NoCache = noCache
	}
}

// WithStream prints results as they are produced.
func WithStream(stream bool) Option {
	return func(o *Options) {
		o.Stream = stream
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}
