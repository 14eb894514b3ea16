package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spiffcs/repofinder/internal/constants"
)

// AllSortOptions lists the accepted values for SearchRequest.Sort.
var AllSortOptions = []string{constants.SortBest, "stars", "forks", "updated"}

// SearchRequest is one search invocation, shared by the HTTP API and the CLI.
type SearchRequest struct {
	Query              string   `json:"query"`
	UseCache           bool     `json:"use_cache"`
	PerPage            int      `json:"per_page"`
	Limit              int      `json:"limit"`
	IncludeName        bool     `json:"include_name"`
	IncludeDescription bool     `json:"include_description"`
	IncludeReadme      bool     `json:"include_readme"`
	IncludeTopics      bool     `json:"include_topics"`
	PushedWithinDays   int      `json:"pushed_within_days"`
	MinStars           int      `json:"min_stars"`
	Sort               string   `json:"sort"`
	Filters            []string `json:"filters,omitempty"`
}

// NewSearchRequest returns a request populated with defaults. Decoding JSON
// into it only overrides the fields the caller sent.
func NewSearchRequest(query string) SearchRequest {
	return SearchRequest{
		Query:              query,
		UseCache:           true,
		PerPage:            constants.DefaultPerPage,
		Limit:              constants.DefaultLimit,
		IncludeName:        true,
		IncludeDescription: true,
		IncludeReadme:      true,
		IncludeTopics:      true,
		PushedWithinDays:   constants.DefaultPushedWithinDays,
		Sort:               constants.SortBest,
	}
}

// Validate normalizes the request in place and reports every invalid field.
func (r *SearchRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Sort == "" {
		r.Sort = constants.SortBest
	}

	var errs []error
	if r.Query == "" {
		errs = append(errs, errors.New("query must not be empty"))
	}
	if r.PerPage < 1 || r.PerPage > constants.MaxPerPage {
		errs = append(errs, fmt.Errorf("per_page must be between 1 and %d", constants.MaxPerPage))
	}
	if r.Limit < 1 || r.Limit > constants.MaxLimit {
		errs = append(errs, fmt.Errorf("limit must be between 1 and %d", constants.MaxLimit))
	}
	if r.PushedWithinDays < 0 || r.PushedWithinDays > constants.MaxPushedWithinDays {
		errs = append(errs, fmt.Errorf("pushed_within_days must be between 0 and %d", constants.MaxPushedWithinDays))
	}
	if r.MinStars < 0 {
		errs = append(errs, errors.New("min_stars must not be negative"))
	}
	if !slices.Contains(AllSortOptions, r.Sort) {
		errs = append(errs, fmt.Errorf("sort must be one of %s", strings.Join(AllSortOptions, ", ")))
	}
	return errors.Join(errs...)
}

// SearchResponse is the finalized, ranked result of a search.
type SearchResponse struct {
	Query          string       `json:"query"`
	IntentKeywords []string     `json:"intent_keywords"`
	Results        []RepoResult `json:"results"`
}
