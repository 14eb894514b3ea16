package explain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spiffcs/repofinder/internal/model"
)

type fakeChatter struct {
	reply string
	err   error
	user  string
}

func (f *fakeChatter) Chat(_ context.Context, _, user string) (string, error) {
	f.user = user
	return f.reply, f.err
}

func candidate() model.RepoCandidate {
	desc := "Elegant scraper framework"
	lang := "Go"
	return model.RepoCandidate{
		FullName:    "gocolly/colly",
		HTMLURL:     "https://github.com/gocolly/colly",
		Description: &desc,
		Language:    &lang,
		Stars:       23000,
		UpdatedAt:   "2025-05-01T10:00:00Z",
		Topics:      []string{"crawler", "scraper"},
	}
}

func TestFallback(t *testing.T) {
	want := "gocolly/colly: 23000 stars, last updated 2025-05-01T10:00:00Z; check the README examples and issue activity to judge fit."
	if got := Fallback(candidate()); got != want {
		t.Errorf("Fallback() = %q, want %q", got, want)
	}
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name string
		chat *fakeChatter
		want string
	}{
		{"model reply", &fakeChatter{reply: "  Colly is a mature Go crawler.  "}, "Colly is a mature Go crawler."},
		{"model error", &fakeChatter{err: errors.New("boom")}, Fallback(candidate())},
		{"empty reply", &fakeChatter{reply: "   "}, Fallback(candidate())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewExplainer(tt.chat).Explain(context.Background(), "go crawler", candidate())
			if got != tt.want {
				t.Errorf("Explain() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExplainWithoutModel(t *testing.T) {
	if got := NewExplainer(nil).Explain(context.Background(), "x", candidate()); got != Fallback(candidate()) {
		t.Errorf("Explain() = %q, want fallback", got)
	}
}

func TestUserPromptCarriesFacts(t *testing.T) {
	chat := &fakeChatter{reply: "ok"}
	NewExplainer(chat).Explain(context.Background(), "go crawler", candidate())

	for _, want := range []string{"Need: go crawler", "Repository: gocolly/colly", "Language: Go", "Stars: 23000", "Topics: crawler, scraper"} {
		if !strings.Contains(chat.user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, chat.user)
		}
	}
}
