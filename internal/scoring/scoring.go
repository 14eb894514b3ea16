// Package scoring ranks repository candidates with a fixed, deterministic
// formula built from freshness, activity and documentation hints.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/spiffcs/repofinder/internal/model"
)

// Weights defines how the three sub-scores are combined.
type Weights struct {
	Freshness     float64
	Activity      float64
	Documentation float64
}

// DefaultWeights returns the weights used for every ranking.
func DefaultWeights() Weights {
	return Weights{
		Freshness:     0.45,
		Activity:      0.40,
		Documentation: 0.15,
	}
}

// unparsableFreshness is used when updated_at cannot be read.
const unparsableFreshness = 0.2

// freshnessSteps maps a maximum age in days to its freshness score.
var freshnessSteps = []struct {
	maxDays int
	score   float64
}{
	{7, 1.0},
	{30, 0.9},
	{90, 0.75},
	{180, 0.6},
	{1825, 0.5},
}

const staleFreshness = 0.3

// docHintTerms mark a description as pointing at runnable examples.
var docHintTerms = []string{"example", "demo", "示例", "演示", "例子"}

// timestampLayouts are tried in order when parsing updated_at. Layouts
// without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Breakdown holds the individual sub-scores behind a total.
type Breakdown struct {
	Freshness     float64 `json:"freshness"`
	Activity      float64 `json:"activity"`
	Documentation float64 `json:"documentation"`
	Total         float64 `json:"total"`
}

// Scorer computes repository scores relative to a clock.
type Scorer struct {
	Weights Weights
	Now     func() time.Time
}

// NewScorer creates a scorer with the default weights and the wall clock.
func NewScorer() *Scorer {
	return &Scorer{
		Weights: DefaultWeights(),
		Now:     time.Now,
	}
}

// Score returns the weighted score of c, in [0,1] and rounded to 3 decimals.
func (s *Scorer) Score(c model.RepoCandidate) float64 {
	return s.Breakdown(c).Total
}

// Breakdown returns every sub-score together with the rounded total.
func (s *Scorer) Breakdown(c model.RepoCandidate) Breakdown {
	b := Breakdown{
		Freshness:     Freshness(c.UpdatedAt, s.Now()),
		Activity:      Activity(c.Stars, c.Forks, c.OpenIssues),
		Documentation: Documentation(c.DescriptionText(), c.Topics),
	}
	total := s.Weights.Freshness*b.Freshness +
		s.Weights.Activity*b.Activity +
		s.Weights.Documentation*b.Documentation
	b.Total = round3(clamp01(total))
	return b
}

// Freshness scores how recently a repository was updated.
func Freshness(updatedAt string, now time.Time) float64 {
	updated, ok := parseTimestamp(updatedAt)
	if !ok {
		return unparsableFreshness
	}
	days := int(math.Floor(now.UTC().Sub(updated).Hours() / 24))
	for _, step := range freshnessSteps {
		if days <= step.maxDays {
			return step.score
		}
	}
	return staleFreshness
}

// Activity scores popularity and issue load.
func Activity(stars, forks, openIssues int) float64 {
	starScore := math.Min(float64(stars)/5000, 1)
	forkScore := math.Min(float64(forks)/1000, 1)
	issueScore := 0.4
	if openIssues < 20 {
		issueScore = 0.7
	}
	return 0.5*starScore + 0.3*forkScore + 0.2*issueScore
}

// Documentation scores hints that the project is easy to pick up.
func Documentation(description string, topics []string) float64 {
	score := 0.2
	lower := strings.ToLower(description)
	for _, term := range docHintTerms {
		if strings.Contains(lower, term) {
			score += 0.3
			break
		}
	}
	if len(topics) > 0 {
		score += 0.2
	}
	return math.Min(score, 1)
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
