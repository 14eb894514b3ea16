// Package ghclient wraps the GitHub REST API for repository search and
// lookup, converting responses into validated model.RepoCandidate values.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/log"
	"github.com/spiffcs/repofinder/internal/model"
)

// TransportError is returned when GitHub answers a search with a non-2xx
// status or cannot be reached at all (StatusCode 0).
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("GitHub request failed: %v", e.Err)
	}
	return fmt.Sprintf("GitHub API error %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Options configures a Client.
type Options struct {
	// Token is optional; unauthenticated clients get a much lower rate limit.
	Token   string
	BaseURL string
	Proxy   string
	Timeout time.Duration
}

// SearchOptions controls paging and ordering of a repository search.
type SearchOptions struct {
	PerPage int
	Sort    string
	Order   string
}

// Client wraps the GitHub API client
type Client struct {
	client    *gh.Client
	rateLimit *rateLimits
	// token is intentionally unexported. NEVER add String(), MarshalJSON(),
	// or any method that could expose this value in logs or serialized output.
	token string
}

// NewClient creates a GitHub client from opts.
func NewClient(opts Options) (*Client, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub proxy URL: %w", err)
		}
		base.Proxy = http.ProxyURL(proxyURL)
	}

	var transport http.RoundTripper = base
	if opts.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
			Base:   base,
		}
	} else {
		log.Warn("GITHUB_TOKEN not set, using unauthenticated GitHub requests")
	}

	limits := newRateLimits()
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultGitHubTimeout
	}
	httpClient := &http.Client{
		Transport: &rateLimitTransport{base: transport, limits: limits},
		Timeout:   timeout,
	}

	client := gh.NewClient(httpClient)
	client.UserAgent = constants.UserAgent

	if opts.BaseURL != "" {
		baseURL := opts.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		client.BaseURL = u
	}

	return &Client{
		client:    client,
		rateLimit: limits,
		token:     opts.Token,
	}, nil
}

// Authenticated reports whether requests carry a token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Search runs a repository search and returns the validated candidates in
// GitHub's order. Sort and order are only sent for an explicit sort; "best"
// leaves ranking to GitHub.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]model.RepoCandidate, error) {
	searchOpts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: opts.PerPage},
	}
	if opts.Sort != "" && opts.Sort != constants.SortBest {
		searchOpts.Sort = opts.Sort
		searchOpts.Order = opts.Order
		if searchOpts.Order == "" {
			searchOpts.Order = "desc"
		}
	}

	start := time.Now()
	result, _, err := c.client.Search.Repositories(ctx, query, searchOpts)
	if err != nil {
		return nil, toTransportError(err)
	}
	log.Debug("github search complete",
		"query", query,
		"total", result.GetTotal(),
		"returned", len(result.Repositories),
		"duration", time.Since(start))

	candidates := make([]model.RepoCandidate, 0, len(result.Repositories))
	for _, repo := range result.Repositories {
		candidate, ok := toCandidate(repo)
		if !ok {
			log.Debug("skipping repository without full_name", "id", repo.GetID())
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// GetRepository fetches one repository by "owner/repo". Not-found,
// malformed identifiers and transport errors are all reported as absent.
func (c *Client) GetRepository(ctx context.Context, fullName string) (model.RepoCandidate, bool) {
	owner, name, ok := splitFullName(fullName)
	if !ok {
		log.Debug("invalid repository identifier", "full_name", fullName)
		return model.RepoCandidate{}, false
	}

	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		log.Debug("failed to fetch repository", "full_name", fullName, "error", err)
		return model.RepoCandidate{}, false
	}
	return toCandidate(repo)
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// RateLimitStatus returns the limits last observed, preferring an exhausted
// bucket so callers can report it.
func (c *Client) RateLimitStatus() RateLimitStatus {
	return c.rateLimit.Status()
}

func splitFullName(fullName string) (owner, name string, ok bool) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// toCandidate converts a GitHub repository into a RepoCandidate. The last
// push time is preferred over the metadata update time.
func toCandidate(repo *gh.Repository) (model.RepoCandidate, bool) {
	if repo == nil || repo.GetFullName() == "" {
		return model.RepoCandidate{}, false
	}

	var updatedAt string
	switch {
	case repo.PushedAt != nil && !repo.PushedAt.IsZero():
		updatedAt = repo.PushedAt.UTC().Format(time.RFC3339)
	case repo.UpdatedAt != nil && !repo.UpdatedAt.IsZero():
		updatedAt = repo.UpdatedAt.UTC().Format(time.RFC3339)
	}

	htmlURL := repo.GetHTMLURL()
	if htmlURL == "" {
		htmlURL = "https://github.com/" + repo.GetFullName()
	}

	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	c := model.RepoCandidate{
		FullName:      repo.GetFullName(),
		HTMLURL:       htmlURL,
		Description:   repo.Description,
		Language:      repo.Language,
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		UpdatedAt:     updatedAt,
		Topics:        topics,
		DefaultBranch: repo.GetDefaultBranch(),
	}
	if repo.Owner != nil && repo.Owner.Type != nil {
		c.OwnerType = repo.Owner.Type
	}
	if repo.License != nil && repo.License.SPDXID != nil {
		c.License = repo.License.SPDXID
	}
	return c, true
}

// toTransportError converts go-github errors into a TransportError that
// carries the upstream status and message.
func toTransportError(err error) error {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		body := errResp.Message
		for _, e := range errResp.Errors {
			if e.Message != "" {
				body += "; " + e.Message
			}
		}
		return &TransportError{StatusCode: errResp.Response.StatusCode, Body: body, Err: err}
	}

	// go-github refuses locally once it has seen an exhausted bucket.
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return &TransportError{StatusCode: rateErr.Response.StatusCode, Body: rateErr.Message, Err: fmt.Errorf("%w: %w", ErrRateLimited, err)}
	}

	if errors.Is(err, ErrRateLimited) {
		return &TransportError{StatusCode: http.StatusForbidden, Body: "API rate limit exceeded", Err: err}
	}

	return &TransportError{Err: err}
}
