package assembler

import (
	"errors"
	"fmt"
)

// EventKind names a stream event. The values are the SSE event names.
type EventKind string

const (
	EventIntent     EventKind = "intent"
	EventDebugQuery EventKind = "debug-query"
	EventItem       EventKind = "item"
	EventError      EventKind = "error"
	EventDone       EventKind = "done"
)

// Event is one message of a streamed search. Data is JSON-encodable:
// IntentData, DebugQueryData, model.RepoResult, ErrorData or DoneData.
type Event struct {
	Kind EventKind
	Data any
}

// EmitFunc delivers an event to the consumer. A non-nil error means the
// consumer is gone and the pipeline stops.
type EmitFunc func(Event) error

// IntentData is the payload of an intent event.
type IntentData struct {
	Keywords []string `json:"keywords"`
}

// DebugQueryData is the payload of a debug-query event.
type DebugQueryData struct {
	GitHubQuery string `json:"github_query"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	Stage  Stage  `json:"stage"`
	Detail string `json:"detail"`
}

// DoneData is the payload of the final done event.
type DoneData struct {
	Count int `json:"count"`
}

// Stage identifies the pipeline step an error came from.
type Stage string

const (
	StageIntent    Stage = "intent"
	StageSearch    Stage = "search"
	StageRecommend Stage = "recommend"
	StageScoring   Stage = "scoring"
	StageResolve   Stage = "resolve"
)

// StageError is a failure attributed to one pipeline stage. Fatal errors
// end the request; the rest are reported and the pipeline continues.
type StageError struct {
	Stage Stage
	Err   error
	fatal bool
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the request was aborted.
func (e *StageError) Fatal() bool {
	return e.fatal
}

func fatalError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err, fatal: true}
}

// AsStageError unwraps err into a StageError, if it is one.
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
