// Package explain writes the short "why this repository" text attached to
// each result.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/spiffcs/repofinder/internal/llm"
	"github.com/spiffcs/repofinder/internal/log"
	"github.com/spiffcs/repofinder/internal/model"
)

const systemPrompt = `You explain in 1-2 sentences why a GitHub repository fits a developer's need.
Use only the repository facts provided. Do not invent features, benchmarks or users.
Reply with plain text, no markdown.`

// Explainer produces explanations, asking the model when one is configured.
type Explainer struct {
	chat llm.Chatter
}

// NewExplainer returns an Explainer. A nil chat always uses Fallback.
func NewExplainer(chat llm.Chatter) *Explainer {
	return &Explainer{chat: chat}
}

// Explain returns an explanation of why c matches need. It never fails;
// model errors and empty replies produce Fallback(c).
func (e *Explainer) Explain(ctx context.Context, need string, c model.RepoCandidate) string {
	if e == nil || e.chat == nil {
		return Fallback(c)
	}

	reply, err := e.chat.Chat(ctx, systemPrompt, userPrompt(need, c))
	if err != nil {
		log.Debug("explanation failed, using template", "repo", c.FullName, "error", err)
		return Fallback(c)
	}
	reply = strings.TrimSpace(llm.StripCodeFence(reply))
	if reply == "" {
		return Fallback(c)
	}
	return reply
}

func userPrompt(need string, c model.RepoCandidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Need: %s\n", need)
	fmt.Fprintf(&b, "Repository: %s\n", c.FullName)
	if d := c.DescriptionText(); d != "" {
		fmt.Fprintf(&b, "Description: %s\n", d)
	}
	if l := c.LanguageText(); l != "" {
		fmt.Fprintf(&b, "Language: %s\n", l)
	}
	fmt.Fprintf(&b, "Stars: %d\n", c.Stars)
	fmt.Fprintf(&b, "Last updated: %s\n", c.UpdatedAt)
	if len(c.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(c.Topics, ", "))
	}
	return b.String()
}

// Fallback is the templated explanation used without a model.
func Fallback(c model.RepoCandidate) string {
	return fmt.Sprintf("%s: %d stars, last updated %s; check the README examples and issue activity to judge fit.",
		c.FullName, c.Stars, c.UpdatedAt)
}
