package model

import (
	"strings"
	"testing"
)

func TestNewSearchRequestDefaults(t *testing.T) {
	req := NewSearchRequest("vector database")

	if !req.UseCache {
		t.Error("UseCache = false, want true")
	}
	if req.PerPage != 12 {
		t.Errorf("PerPage = %d, want 12", req.PerPage)
	}
	if req.Limit != 10 {
		t.Errorf("Limit = %d, want 10", req.Limit)
	}
	if !req.IncludeName || !req.IncludeDescription || !req.IncludeReadme || !req.IncludeTopics {
		t.Error("expected every scope flag enabled by default")
	}
	if req.PushedWithinDays != 1825 {
		t.Errorf("PushedWithinDays = %d, want 1825", req.PushedWithinDays)
	}
	if req.Sort != "best" {
		t.Errorf("Sort = %q, want %q", req.Sort, "best")
	}
}

func TestSearchRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SearchRequest)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*SearchRequest) {}},
		{name: "blank query", mutate: func(r *SearchRequest) { r.Query = "   " }, wantErr: "query"},
		{name: "per_page too large", mutate: func(r *SearchRequest) { r.PerPage = 51 }, wantErr: "per_page"},
		{name: "limit zero", mutate: func(r *SearchRequest) { r.Limit = 0 }, wantErr: "limit"},
		{name: "negative window", mutate: func(r *SearchRequest) { r.PushedWithinDays = -1 }, wantErr: "pushed_within_days"},
		{name: "negative stars", mutate: func(r *SearchRequest) { r.MinStars = -5 }, wantErr: "min_stars"},
		{name: "unknown sort", mutate: func(r *SearchRequest) { r.Sort = "random" }, wantErr: "sort"},
		{name: "empty sort defaults", mutate: func(r *SearchRequest) { r.Sort = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewSearchRequest("cli framework")
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestRepoCandidateName(t *testing.T) {
	tests := []struct {
		fullName string
		want     string
	}{
		{"spf13/cobra", "cobra"},
		{"solo", "solo"},
	}
	for _, tt := range tests {
		if got := (RepoCandidate{FullName: tt.fullName}).Name(); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.fullName, got, tt.want)
		}
	}
}

func TestNewRepoResult(t *testing.T) {
	desc := "A Commander for modern Go CLI interactions"
	c := RepoCandidate{
		FullName:    "spf13/cobra",
		HTMLURL:     "https://github.com/spf13/cobra",
		Description: &desc,
		Stars:       38000,
		UpdatedAt:   "2025-01-02T03:04:05Z",
	}

	r := NewRepoResult(c, 0.812, "popular CLI framework")

	if r.Name != "cobra" || r.FullName != "spf13/cobra" {
		t.Errorf("unexpected identity %q / %q", r.Name, r.FullName)
	}
	if r.Topics == nil {
		t.Error("Topics should be an empty slice, not nil")
	}
	if r.Score != 0.812 || r.Reason != "popular CLI framework" {
		t.Errorf("unexpected score/reason %v / %q", r.Score, r.Reason)
	}
}
