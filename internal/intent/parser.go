// Package intent turns a free-text need into a ParsedIntent, asking a
// language model when one is configured and falling back to a local
// heuristic otherwise.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/llm"
	"github.com/spiffcs/repofinder/internal/log"
	"github.com/spiffcs/repofinder/internal/model"
)

const systemPrompt = `You convert a developer's description of the open-source project they need into GitHub search terms.
Reply with a single JSON object and nothing else:
{"keywords": [], "languages": [], "description": "", "filters": []}

Rules:
- keywords: 3 to 6 short English technical terms a repository would use in its name, description or topics.
- Replace vague adjectives with technical terms ("fast" -> "performance", "simple" -> "minimal").
- Translate non-English terms into their English technical equivalents.
- languages: lower-case programming language names explicitly requested, otherwise [].
- description: one sentence restating the need in English.
- filters: extra GitHub search qualifiers such as "license:mit", otherwise [].`

var errNoKeywords = errors.New("reply has no keywords array")

// Parser resolves intents.
type Parser struct {
	chat llm.Chatter
}

// NewParser returns a Parser. A nil chat uses the heuristic only.
func NewParser(chat llm.Chatter) *Parser {
	return &Parser{chat: chat}
}

// Parse resolves text into an intent. Model failures of any kind fall back
// to Heuristic; the only error returned is the context's.
func (p *Parser) Parse(ctx context.Context, text string) (model.ParsedIntent, error) {
	if err := ctx.Err(); err != nil {
		return model.ParsedIntent{}, err
	}
	if p == nil || p.chat == nil {
		return Heuristic(text), nil
	}

	reply, err := p.chat.Chat(ctx, systemPrompt, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.ParsedIntent{}, ctxErr
		}
		if !errors.Is(err, llm.ErrNotConfigured) {
			log.Debug("intent model call failed, using heuristic", "error", err)
		}
		return Heuristic(text), nil
	}

	parsed, err := decodeReply(reply)
	if err != nil {
		log.Debug("intent reply rejected, using heuristic", "error", err)
		log.Trace("rejected intent reply", "reply", reply)
		return Heuristic(text), nil
	}
	return finish(parsed, text), nil
}

type replyIntent struct {
	Keywords    []string `json:"keywords"`
	Languages   []string `json:"languages"`
	Description string   `json:"description"`
	Filters     []string `json:"filters"`
}

func decodeReply(reply string) (replyIntent, error) {
	obj, ok := llm.ExtractObject(llm.StripCodeFence(reply))
	if !ok {
		return replyIntent{}, errors.New("reply contains no JSON object")
	}
	var r replyIntent
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		return replyIntent{}, fmt.Errorf("failed to decode intent reply: %w", err)
	}
	if r.Keywords == nil {
		return replyIntent{}, errNoKeywords
	}
	return r, nil
}

// finish cleans a model intent and tops it up from the heuristic when the
// model returned too few keywords.
func finish(r replyIntent, text string) model.ParsedIntent {
	keywords := dedupKeywords(r.Keywords, constants.MaxIntentKeywords)
	languages := normalizeLanguages(r.Languages)

	if len(keywords) < constants.MinLLMKeywords {
		h := Heuristic(text)
		keywords = dedupKeywords(append(keywords, h.Keywords...), constants.MaxIntentKeywords)
		languages = normalizeLanguages(append(languages, h.Languages...))
	}

	description := strings.TrimSpace(r.Description)
	if description == "" {
		description = strings.TrimSpace(text)
	}

	filters := make([]string, 0, len(r.Filters))
	for _, f := range r.Filters {
		if f = strings.TrimSpace(f); f != "" {
			filters = append(filters, f)
		}
	}

	return model.ParsedIntent{
		Keywords:    keywords,
		Languages:   languages,
		Description: description,
		Filters:     filters,
	}
}

// normalizeLanguages lower-cases, resolves aliases and drops duplicates.
func normalizeLanguages(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, l := range in {
		l = strings.ToLower(strings.TrimSpace(l))
		if canonical, ok := canonicalLanguage(l); ok {
			l = canonical
		}
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
