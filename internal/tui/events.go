package tui

import "time"

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskIntent TaskID = iota // Resolving the search intent
	TaskSearch               // Keyword search against GitHub
	TaskEnrich               // Scoring and explaining repositories
	TaskRank                 // Ranking and truncating results
)

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string  // Optional message (e.g., the generated query)
	Count    int     // Count of items (e.g., repositories scored)
	Progress float64 // Progress from 0.0 to 1.0
	Error    error   // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// WarningEvent reports a recoverable stage failure below the task list.
type WarningEvent struct {
	Stage  string
	Detail string
}

func (WarningEvent) isEvent() {}

// RateLimitEvent reports the GitHub search rate limit state.
type RateLimitEvent struct {
	Limited bool
	ResetAt time.Time
}

func (RateLimitEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
