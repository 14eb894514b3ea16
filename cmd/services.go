package cmd

import (
	"github.com/spiffcs/repofinder/config"
	"github.com/spiffcs/repofinder/internal/assembler"
	"github.com/spiffcs/repofinder/internal/cache"
	"github.com/spiffcs/repofinder/internal/explain"
	"github.com/spiffcs/repofinder/internal/ghclient"
	"github.com/spiffcs/repofinder/internal/intent"
	"github.com/spiffcs/repofinder/internal/llm"
	"github.com/spiffcs/repofinder/internal/log"
	"github.com/spiffcs/repofinder/internal/metrics"
	"github.com/spiffcs/repofinder/internal/recommend"
	"github.com/spiffcs/repofinder/internal/scoring"
)

// services bundles the wired pipeline shared by the search and serve commands.
type services struct {
	assembler *assembler.Assembler
	github    *ghclient.Client
	cache     *cache.Cache
}

// newServices wires every pipeline stage from resolved settings. Without an
// LLM key the intent parser runs on its heuristic, explanations use the
// template and recommendations are skipped.
func newServices(s config.Settings) (*services, error) {
	gh, err := ghclient.NewClient(ghclient.Options{
		Token:   s.GitHub.Token,
		BaseURL: s.GitHub.BaseURL,
		Proxy:   s.GitHub.Proxy,
		Timeout: s.GitHub.Timeout,
	})
	if err != nil {
		return nil, err
	}

	var (
		chat        llm.Chatter
		recommender assembler.Recommender
	)
	if s.LLM.APIKey != "" {
		client := llm.NewClient(llm.Options{
			APIKey:      s.LLM.APIKey,
			BaseURL:     s.LLM.BaseURL,
			Model:       s.LLM.Model,
			Temperature: s.LLM.Temperature,
			Timeout:     s.LLM.Timeout,
			MaxRetries:  s.LLM.MaxRetries,
		})
		chat = client
		recommender = recommend.NewEngine(client)
		log.Debug("language model configured", "model", client.Model(), "base_url", s.LLM.BaseURL)
	} else {
		log.Info("OPENAI_API_KEY not set, using heuristic intent parsing without recommendations")
	}

	responses, err := cache.New(s.Cache.MaxEntries)
	if err != nil {
		return nil, err
	}
	metrics.WatchCache(cacheStatsFunc(responses))

	a := assembler.New(assembler.Deps{
		Intents:     intent.NewParser(chat),
		Repos:       gh,
		Recommender: recommender,
		Explainer:   explain.NewExplainer(chat),
		Scorer:      scoring.NewScorer(),
		Cache:       responses,
	}, assembler.Options{
		CacheTTL:       s.Cache.TTL,
		RecommendCount: s.Search.RecommendCount,
	})

	return &services{assembler: a, github: gh, cache: responses}, nil
}

// cacheStatsFunc exposes the cache's entry counts to the metrics gauges.
func cacheStatsFunc(c *cache.Cache) metrics.CacheStatsFunc {
	return func() (live, expired int) {
		s := c.Stats()
		return s.Live, s.Expired
	}
}
