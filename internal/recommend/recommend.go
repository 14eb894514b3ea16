// Package recommend asks a language model for well-known repositories that
// match a need, returning them as "owner/repo" identifiers.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spiffcs/repofinder/internal/llm"
	"github.com/spiffcs/repofinder/internal/log"
)

// ErrNotConfigured is returned when the engine has no model to ask.
var ErrNotConfigured = errors.New("recommendation model not configured")

const systemPrompt = `You recommend real, existing open-source GitHub repositories.
Reply with a JSON array of "owner/repo" strings and nothing else, most relevant first.
Only include repositories you are confident exist. Do not add explanations.`

// Engine produces repository recommendations.
type Engine struct {
	chat llm.Chatter
}

// NewEngine returns an Engine. A nil chat makes every call return
// ErrNotConfigured.
func NewEngine(chat llm.Chatter) *Engine {
	return &Engine{chat: chat}
}

// Recommend returns at most limit identifiers for text. The error only
// reports why the list is empty; callers can always use the slice.
func (e *Engine) Recommend(ctx context.Context, text string, limit int) ([]string, error) {
	if e == nil || e.chat == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		return nil, nil
	}

	user := fmt.Sprintf("Recommend up to %d GitHub repositories for this need:\n%s", limit, text)
	reply, err := e.chat.Chat(ctx, systemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("recommendation request failed: %w", err)
	}

	ids, err := ParseReply(reply)
	if err != nil {
		log.Trace("unparsable recommendation reply", "reply", reply)
		return nil, err
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	log.Debug("model recommendations", "count", len(ids))
	return ids, nil
}

// ParseReply extracts valid "owner/repo" identifiers from a model reply.
// Code fences are ignored; when the body is not a JSON array the first
// bracketed array inside it is tried.
func ParseReply(reply string) ([]string, error) {
	body := llm.StripCodeFence(reply)

	var raw []any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		arr, ok := llm.ExtractArray(body)
		if !ok {
			return nil, errors.New("recommendation reply contains no JSON array")
		}
		if err := json.Unmarshal([]byte(arr), &raw); err != nil {
			return nil, fmt.Errorf("failed to decode recommendation array: %w", err)
		}
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if id, ok := validIdentifier(s); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// validIdentifier accepts exactly one '/' between two non-empty segments.
func validIdentifier(s string) (string, bool) {
	s = strings.TrimSpace(s)
	owner, repo, found := strings.Cut(s, "/")
	if !found || strings.Contains(repo, "/") {
		return "", false
	}
	owner, repo = strings.TrimSpace(owner), strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return "", false
	}
	return owner + "/" + repo, true
}
