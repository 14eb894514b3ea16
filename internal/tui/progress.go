package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spiffcs/repofinder/internal/assembler"
)

// Tracker translates pipeline events into task events. Emit is called
// from a single goroutine.
type Tracker struct {
	events   chan<- Event
	queries  int
	scored   int
	searched bool
}

// NewTracker returns a Tracker sending to events. A nil channel makes
// every call a no-op.
func NewTracker(events chan<- Event) *Tracker {
	return &Tracker{events: events}
}

// Start marks the first task as running.
func (t *Tracker) Start() {
	SendTaskEvent(t.events, TaskIntent, StatusRunning)
}

// Emit implements assembler.EmitFunc. It never fails.
func (t *Tracker) Emit(e assembler.Event) error {
	switch e.Kind {
	case assembler.EventIntent:
		data, _ := e.Data.(assembler.IntentData)
		SendTaskEvent(t.events, TaskIntent, StatusComplete, WithMessage(strings.Join(data.Keywords, ", ")))
		SendTaskEvent(t.events, TaskSearch, StatusRunning)

	case assembler.EventDebugQuery:
		t.queries++
		data, _ := e.Data.(assembler.DebugQueryData)
		msg := data.GitHubQuery
		if t.queries > 1 {
			msg = fmt.Sprintf("retry: %s", data.GitHubQuery)
		}
		SendTaskEvent(t.events, TaskSearch, StatusRunning, WithMessage(msg))

	case assembler.EventItem:
		t.finishSearch()
		t.scored++
		SendTaskEvent(t.events, TaskEnrich, StatusRunning, WithCount(t.scored))

	case assembler.EventError:
		data, _ := e.Data.(assembler.ErrorData)
		switch data.Stage {
		case assembler.StageIntent:
			SendTaskEvent(t.events, TaskIntent, StatusError, WithError(errors.New(data.Detail)))
		case assembler.StageSearch:
			t.searched = true
			SendTaskEvent(t.events, TaskSearch, StatusError, WithError(errors.New(data.Detail)))
		default:
			SendEvent(t.events, WarningEvent{Stage: string(data.Stage), Detail: data.Detail})
		}

	case assembler.EventDone:
		data, _ := e.Data.(assembler.DoneData)
		t.finishSearch()
		SendTaskEvent(t.events, TaskEnrich, StatusComplete, WithCount(t.scored))
		SendTaskEvent(t.events, TaskRank, StatusComplete, WithCount(data.Count))
	}
	return nil
}

func (t *Tracker) finishSearch() {
	if t.searched {
		return
	}
	t.searched = true
	SendTaskEvent(t.events, TaskSearch, StatusComplete)
}
