// Package assembler runs the search pipeline: intent resolution, keyword
// search with one narrowing retry, model recommendations fetched in
// parallel, per-repository scoring and explanation, then ranking and
// caching of the finished response.
package assembler

import (
	"context"
	"errors"
	"time"

	"github.com/spiffcs/repofinder/internal/cache"
	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/ghclient"
	"github.com/spiffcs/repofinder/internal/metrics"
	"github.com/spiffcs/repofinder/internal/model"
)

// IntentResolver turns free text into a search intent.
type IntentResolver interface {
	Parse(ctx context.Context, text string) (model.ParsedIntent, error)
}

// RepoSource searches and fetches repositories.
type RepoSource interface {
	Search(ctx context.Context, query string, opts ghclient.SearchOptions) ([]model.RepoCandidate, error)
	GetRepository(ctx context.Context, fullName string) (model.RepoCandidate, bool)
}

// Recommender suggests "owner/repo" identifiers for free text. The
// returned slice is usable even when err is set.
type Recommender interface {
	Recommend(ctx context.Context, text string, limit int) ([]string, error)
}

// Explainer describes why a repository matches a need. It never fails.
type Explainer interface {
	Explain(ctx context.Context, need string, c model.RepoCandidate) string
}

// Scorer assigns a quality score in [0,1].
type Scorer interface {
	Score(c model.RepoCandidate) float64
}

// Deps are the collaborators of an Assembler. Recommender and Cache are
// optional.
type Deps struct {
	Intents     IntentResolver
	Repos       RepoSource
	Recommender Recommender
	Explainer   Explainer
	Scorer      Scorer
	Cache       cache.Cacher
}

// Options tunes the pipeline.
type Options struct {
	CacheTTL       time.Duration
	RecommendCount int
	// Now is the clock used for recency qualifiers. Defaults to time.Now.
	Now func() time.Time
}

// Assembler merges keyword search and recommendations into one ranked,
// deduplicated response.
type Assembler struct {
	deps Deps
	opts Options
}

// New creates an Assembler.
func New(deps Deps, opts Options) *Assembler {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = constants.DefaultCacheTTL
	}
	if opts.RecommendCount < 0 {
		opts.RecommendCount = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assembler{deps: deps, opts: opts}
}

const (
	modeBatch  = "batch"
	modeStream = "stream"
)

// Search runs the pipeline and returns the finished response. Intent and
// keyword search failures are fatal *StageError values; everything else
// degrades the result instead.
func (a *Assembler) Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	return a.observe(ctx, req, modeBatch, nil)
}

// Stream runs the pipeline, delivering events to emit as work completes:
// intent, one debug-query per search, an item per enriched repository in
// processing order, error for each reported failure, then done. A fatal
// failure is emitted as an error event before it is returned.
func (a *Assembler) Stream(ctx context.Context, req model.SearchRequest, emit EmitFunc) error {
	_, err := a.observe(ctx, req, modeStream, emit)
	return err
}

// SearchWithProgress is Search with the stream events delivered to emit as
// progress. Failures keep batch semantics.
func (a *Assembler) SearchWithProgress(ctx context.Context, req model.SearchRequest, emit EmitFunc) (model.SearchResponse, error) {
	return a.observe(ctx, req, modeBatch, emit)
}

func (a *Assembler) observe(ctx context.Context, req model.SearchRequest, mode string, emit EmitFunc) (model.SearchResponse, error) {
	start := time.Now()
	p := &pipeline{a: a, req: req, mode: mode, emit: emit}
	resp, err := p.run(ctx)

	outcome := "ok"
	switch {
	case err == nil && p.cacheHit:
		outcome = "cache_hit"
	case errors.Is(err, context.Canceled), errors.Is(err, errConsumerGone):
		outcome = "cancelled"
	case err != nil:
		outcome = "error"
	}
	metrics.ObserveSearch(mode, outcome, time.Since(start), len(resp.Results))
	return resp, err
}
