package assembler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/ghclient"
	"github.com/spiffcs/repofinder/internal/log"
	"github.com/spiffcs/repofinder/internal/metrics"
	"github.com/spiffcs/repofinder/internal/model"
	"github.com/spiffcs/repofinder/internal/query"
)

// errConsumerGone wraps the error returned by an EmitFunc.
var errConsumerGone = errors.New("stream consumer gone")

// pipeline is the state of one request.
type pipeline struct {
	a    *Assembler
	req  model.SearchRequest
	mode string
	emit EmitFunc

	intent    model.ParsedIntent
	keywords  []string
	seen      map[string]bool
	requested map[string]bool
	results   []model.RepoResult
	cacheHit  bool
}

func (p *pipeline) run(ctx context.Context) (model.SearchResponse, error) {
	logger := log.FromContext(ctx)
	deps := p.a.deps

	if p.req.UseCache && deps.Cache != nil {
		cached, ok := deps.Cache.Get(p.req.Query)
		metrics.CacheLookup(ok)
		if ok {
			logger.Info("serving cached response", "query", p.req.Query, "results", len(cached.Results))
			p.cacheHit = true
			return cached, p.replay(cached)
		}
	}

	intent, err := deps.Intents.Parse(ctx, p.req.Query)
	if err != nil {
		return model.SearchResponse{}, p.fail(fatalError(StageIntent, err))
	}
	p.intent = intent
	p.keywords = intent.Keywords
	if len(p.keywords) == 0 {
		p.keywords = []string{p.req.Query}
	}
	logger.Debug("resolved intent", "keywords", p.keywords, "languages", intent.Languages)
	if err := p.send(EventIntent, IntentData{Keywords: p.keywords}); err != nil {
		return model.SearchResponse{}, err
	}

	// Recommendations only meet the keyword path at enrichment time, so
	// they are requested up front and collected after keyword items.
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(rctx)
	var (
		recommended []string
		recErr      error
	)
	if deps.Recommender != nil && p.a.opts.RecommendCount > 0 {
		g.Go(func() error {
			recommended, recErr = deps.Recommender.Recommend(gctx, p.req.Query, p.a.opts.RecommendCount)
			return nil
		})
	}
	abort := func(err error) (model.SearchResponse, error) {
		cancel()
		_ = g.Wait()
		return model.SearchResponse{}, err
	}

	candidates, err := p.keywordSearch(ctx)
	if err != nil {
		return abort(err)
	}

	p.seen = make(map[string]bool, len(candidates)+p.a.opts.RecommendCount)
	p.requested = make(map[string]bool, p.a.opts.RecommendCount)
	for _, c := range candidates {
		if err := p.enrich(ctx, c); err != nil {
			return abort(err)
		}
	}

	_ = g.Wait()
	if recErr != nil {
		if err := p.report(ctx, StageRecommend, recErr); err != nil {
			return model.SearchResponse{}, err
		}
	}
	for _, id := range recommended {
		if err := p.resolve(ctx, id); err != nil {
			return model.SearchResponse{}, err
		}
	}

	resp := p.finalize()
	if p.req.UseCache && deps.Cache != nil {
		deps.Cache.Set(p.req.Query, resp, p.a.opts.CacheTTL)
	}
	logger.Info("search complete", "query", p.req.Query, "enriched", len(p.results), "returned", len(resp.Results))
	if err := p.send(EventDone, DoneData{Count: len(resp.Results)}); err != nil {
		return model.SearchResponse{}, err
	}
	return resp, nil
}

// keywordSearch searches with the leading keywords, retrying once with
// fewer when nothing matches. In stream mode a transport failure is
// reported and yields no candidates.
func (p *pipeline) keywordSearch(ctx context.Context) ([]model.RepoCandidate, error) {
	used := firstN(p.keywords, constants.SearchKeywords)
	q := p.buildQuery(used)
	candidates, err := p.search(ctx, q)
	if err != nil {
		return nil, p.searchFailed(ctx, err)
	}
	if len(candidates) > 0 || len(used) <= 1 {
		return candidates, nil
	}

	narrowed := p.buildQuery(firstN(p.keywords, constants.NarrowedKeywords))
	if narrowed == q {
		return candidates, nil
	}
	log.FromContext(ctx).Debug("no results, narrowing query", "query", narrowed)
	candidates, err = p.search(ctx, narrowed)
	if err != nil {
		return nil, p.searchFailed(ctx, err)
	}
	return candidates, nil
}

func (p *pipeline) search(ctx context.Context, q string) ([]model.RepoCandidate, error) {
	if err := p.send(EventDebugQuery, DebugQueryData{GitHubQuery: q}); err != nil {
		return nil, err
	}
	return p.a.deps.Repos.Search(ctx, q, ghclient.SearchOptions{
		PerPage: p.req.PerPage,
		Sort:    p.req.Sort,
		Order:   "desc",
	})
}

func (p *pipeline) searchFailed(ctx context.Context, err error) error {
	if errors.Is(err, errConsumerGone) || ctx.Err() != nil {
		return err
	}
	if p.mode == modeBatch {
		return p.fail(fatalError(StageSearch, err))
	}
	return p.report(ctx, StageSearch, err)
}

func (p *pipeline) buildQuery(keywords []string) string {
	filters := append(slices.Clone(p.intent.Filters), p.req.Filters...)
	return query.BuildAt(query.Params{
		Keywords:  keywords,
		Languages: p.intent.Languages,
		Filters:   filters,
		Scope: query.Scope{
			Name:        p.req.IncludeName,
			Description: p.req.IncludeDescription,
			Readme:      p.req.IncludeReadme,
			Topics:      p.req.IncludeTopics,
		},
		PushedWithinDays: p.req.PushedWithinDays,
		MinStars:         p.req.MinStars,
	}, p.a.opts.Now())
}

// resolve fetches a recommended repository unless it was already seen.
func (p *pipeline) resolve(ctx context.Context, id string) error {
	key := model.RepoKey(id)
	if p.seen[key] || p.requested[key] {
		return nil
	}
	p.requested[key] = true

	c, ok := p.a.deps.Repos.GetRepository(ctx, id)
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ok {
		return p.report(ctx, StageResolve, fmt.Errorf("recommended repository %s could not be resolved", id))
	}
	return p.enrich(ctx, c)
}

// enrich scores and explains one candidate and records it as seen.
func (p *pipeline) enrich(ctx context.Context, c model.RepoCandidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.FullName == "" || c.HTMLURL == "" {
		return p.report(ctx, StageScoring, fmt.Errorf("repository %q is missing full_name or html_url", c.FullName))
	}
	if p.seen[c.Key()] {
		return nil
	}
	p.seen[c.Key()] = true

	score := p.a.deps.Scorer.Score(c)
	reason := p.a.deps.Explainer.Explain(ctx, p.req.Query, c)
	result := model.NewRepoResult(c, score, reason)
	p.results = append(p.results, result)
	return p.send(EventItem, result)
}

// finalize ranks the enriched results. Ties keep their processing order.
func (p *pipeline) finalize() model.SearchResponse {
	results := slices.Clone(p.results)
	slices.SortStableFunc(results, func(x, y model.RepoResult) int {
		return cmp.Compare(y.Score, x.Score)
	})

	limit := p.req.Limit
	if limit <= 0 {
		limit = constants.DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []model.RepoResult{}
	}
	return model.SearchResponse{
		Query:          p.req.Query,
		IntentKeywords: p.keywords,
		Results:        results,
	}
}

// replay streams a cached response as if it had just been assembled.
func (p *pipeline) replay(resp model.SearchResponse) error {
	if err := p.send(EventIntent, IntentData{Keywords: resp.IntentKeywords}); err != nil {
		return err
	}
	for _, r := range resp.Results {
		if err := p.send(EventItem, r); err != nil {
			return err
		}
	}
	return p.send(EventDone, DoneData{Count: len(resp.Results)})
}

// report records a recoverable failure. Only a failed emit is returned.
func (p *pipeline) report(ctx context.Context, stage Stage, err error) error {
	metrics.StageFailure(string(stage))
	log.FromContext(ctx).Debug("recoverable stage failure", "stage", stage, "error", err)
	return p.send(EventError, ErrorData{Stage: stage, Detail: err.Error()})
}

// fail records a fatal failure, emitting it in stream mode.
func (p *pipeline) fail(se *StageError) error {
	metrics.StageFailure(string(se.Stage))
	if err := p.send(EventError, ErrorData{Stage: se.Stage, Detail: se.Err.Error()}); err != nil {
		return err
	}
	return se
}

func (p *pipeline) send(kind EventKind, data any) error {
	if p.emit == nil {
		return nil
	}
	if err := p.emit(Event{Kind: kind, Data: data}); err != nil {
		return fmt.Errorf("%w: %w", errConsumerGone, err)
	}
	return nil
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
