// Package model contains the domain types shared by the search pipeline.
// These types are independent of any external GitHub or LLM library.
package model

import "strings"

// RepoCandidate is raw repository metadata as returned by the repository
// client. Optional upstream fields are pointers.
type RepoCandidate struct {
	FullName      string   `json:"full_name"`
	HTMLURL       string   `json:"html_url"`
	Description   *string  `json:"description"`
	Language      *string  `json:"language"`
	Stars         int      `json:"stargazers_count"`
	Forks         int      `json:"forks_count"`
	OpenIssues    int      `json:"open_issues_count"`
	UpdatedAt     string   `json:"updated_at"` // ISO-8601, last push preferred
	Topics        []string `json:"topics"`
	DefaultBranch string   `json:"default_branch"`
	OwnerType     *string  `json:"owner_type,omitempty"`
	License       *string  `json:"license,omitempty"`
}

// Name returns the last path segment of FullName.
func (c RepoCandidate) Name() string {
	if i := strings.LastIndex(c.FullName, "/"); i >= 0 {
		return c.FullName[i+1:]
	}
	return c.FullName
}

// DescriptionText returns the description or "" when absent.
func (c RepoCandidate) DescriptionText() string {
	if c.Description == nil {
		return ""
	}
	return *c.Description
}

// LanguageText returns the primary language or "" when absent.
func (c RepoCandidate) LanguageText() string {
	if c.Language == nil {
		return ""
	}
	return *c.Language
}

// Key is the identity used for deduplication. GitHub names are
// case-insensitive, so "Owner/Repo" and "owner/repo" are the same repository.
func (c RepoCandidate) Key() string {
	return RepoKey(c.FullName)
}

// RepoKey normalizes an "owner/repo" identifier for deduplication.
func RepoKey(fullName string) string {
	return strings.ToLower(strings.TrimSpace(fullName))
}

// RepoResult is a scored, explained repository ready for display.
type RepoResult struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	HTMLURL     string   `json:"html_url"`
	Description *string  `json:"description"`
	Language    *string  `json:"language"`
	Stars       int      `json:"stars"`
	UpdatedAt   string   `json:"updated_at"`
	Topics      []string `json:"topics"`
	Score       float64  `json:"score"`
	Reason      string   `json:"reason"`
}

// NewRepoResult builds a RepoResult from a candidate, its score and explanation.
func NewRepoResult(c RepoCandidate, score float64, reason string) RepoResult {
	topics := c.Topics
	if topics == nil {
		topics = []string{}
	}
	return RepoResult{
		Name:        c.Name(),
		FullName:    c.FullName,
		HTMLURL:     c.HTMLURL,
		Description: c.Description,
		Language:    c.Language,
		Stars:       c.Stars,
		UpdatedAt:   c.UpdatedAt,
		Topics:      topics,
		Score:       score,
		Reason:      reason,
	}
}
