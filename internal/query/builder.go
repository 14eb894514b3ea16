// Package query turns a parsed intent and user filters into a GitHub
// repository search query string.
package query

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/spiffcs/repofinder/internal/constants"
)

// Scope selects the repository fields the keywords are matched against.
type Scope struct {
	Name        bool
	Description bool
	Readme      bool
	Topics      bool
}

// Params is everything a query is built from.
type Params struct {
	Keywords         []string
	Languages        []string
	Filters          []string
	Scope            Scope
	PushedWithinDays int
	MinStars         int
}

// Build renders the query relative to the current UTC date.
func Build(p Params) string {
	return BuildAt(p, time.Now())
}

// BuildAt renders the query relative to now. Parts are emitted in a fixed
// order: keywords, scope, languages, recency, stars, topics, raw filters.
func BuildAt(p Params, now time.Time) string {
	var parts []string

	for _, kw := range p.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.ContainsFunc(kw, unicode.IsSpace) {
			kw = fmt.Sprintf("%q", kw)
		}
		parts = append(parts, kw)
	}

	if scope := scopeQualifier(p.Scope); scope != "" {
		parts = append(parts, scope)
	}

	for _, lang := range p.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			parts = append(parts, "language:"+lang)
		}
	}

	if p.PushedWithinDays > 0 {
		cutoff := now.UTC().AddDate(0, 0, -p.PushedWithinDays)
		parts = append(parts, "pushed:>"+cutoff.Format(time.DateOnly))
	}

	if p.MinStars > 0 {
		parts = append(parts, fmt.Sprintf("stars:>=%d", p.MinStars))
	}

	if p.Scope.Topics {
		for _, topic := range topicCandidates(p.Keywords) {
			parts = append(parts, "topic:"+topic)
		}
	}

	for _, f := range p.Filters {
		if f != "" {
			parts = append(parts, f)
		}
	}

	return strings.Join(parts, " ")
}

func scopeQualifier(s Scope) string {
	var fields []string
	if s.Name {
		fields = append(fields, "name")
	}
	if s.Description {
		fields = append(fields, "description")
	}
	if s.Readme {
		fields = append(fields, "readme")
	}
	if len(fields) == 0 {
		return ""
	}
	return "in:" + strings.Join(fields, ",")
}

// topicCandidates picks keywords usable as topic: qualifiers. GitHub topics
// are lower-case ASCII without spaces.
func topicCandidates(keywords []string) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, kw := range keywords {
		t := strings.ToLower(strings.TrimSpace(kw))
		if t == "" || seen[t] || !isTopicToken(t) {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
		if len(topics) == constants.MaxTopicQualifiers {
			break
		}
	}
	return topics
}

func isTopicToken(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
