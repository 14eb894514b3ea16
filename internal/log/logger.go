// Package log is the process-wide structured logger shared by the CLI and
// the HTTP server. It wraps log/slog with verbosity levels driven by -v flags.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Verbosity levels
const (
	LevelQuiet = iota // Default: only errors and warnings
	LevelInfo         // -v: request summaries, cache hits, counts
	LevelDebug        // -vv: upstream calls, generated queries, timing
	LevelTrace        // -vvv: raw model replies, full payloads
)

// Format selects the slog handler used for output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const (
	slogLevelTrace = slog.Level(-8) // Below debug
)

type ctxKey struct{}

var (
	mu         sync.RWMutex
	verbosity  int
	logger     *slog.Logger
	output     io.Writer
	format     = FormatText
	inProgress bool
)

// Initialize sets up the global text logger with the specified verbosity level.
func Initialize(level int, w io.Writer) {
	InitializeWithFormat(level, w, FormatText)
}

// InitializeWithFormat sets up the global logger with an explicit handler
// format. The server uses JSON so log lines can be shipped as-is.
func InitializeWithFormat(level int, w io.Writer, f Format) {
	mu.Lock()
	defer mu.Unlock()

	verbosity = level
	output = w
	format = f
	logger = slog.New(newHandler(w, f, slogLevelFor(level)))
}

func slogLevelFor(level int) slog.Level {
	switch {
	case level >= LevelTrace:
		return slogLevelTrace
	case level >= LevelDebug:
		return slog.LevelDebug
	case level >= LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func newHandler(w io.Writer, f Format, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if f == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// NewContext stores a request-scoped logger in ctx.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger stored in ctx, or the
// global logger when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return current()
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	if Verbosity() >= LevelInfo {
		clearProgress()
		current().Info(msg, args...)
	}
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	if Verbosity() >= LevelDebug {
		clearProgress()
		current().Debug(msg, args...)
	}
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	if Verbosity() >= LevelTrace {
		clearProgress()
		current().Log(context.Background(), slogLevelTrace, msg, args...)
	}
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	clearProgress()
	current().Warn(msg, args...)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	clearProgress()
	current().Error(msg, args...)
}

// Progress prints a progress message with carriage return (no newline).
// Only shown at info level or higher, and never in JSON mode.
func Progress(msgFormat string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbosity >= LevelInfo && format == FormatText {
		inProgress = true
		_, _ = fmt.Fprintf(output, "\r"+msgFormat, args...)
	}
}

// ProgressDone completes a progress line with "done" and newline
func ProgressDone() {
	mu.Lock()
	defer mu.Unlock()
	if verbosity >= LevelInfo && inProgress {
		_, _ = fmt.Fprintln(output, " done")
		inProgress = false
	}
}

// ProgressClear clears the current progress line
func ProgressClear() {
	mu.Lock()
	defer mu.Unlock()
	if inProgress {
		_, _ = fmt.Fprint(output, "\r\033[K")
		inProgress = false
	}
}

func clearProgress() {
	mu.Lock()
	defer mu.Unlock()
	if inProgress {
		_, _ = fmt.Fprintln(output)
		inProgress = false
	}
}

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool {
	return Verbosity() >= LevelInfo
}

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool {
	return Verbosity() >= LevelDebug
}

// IsTrace returns true if trace-level logging is enabled
func IsTrace() bool {
	return Verbosity() >= LevelTrace
}

// Verbosity returns the current verbosity level
func Verbosity() int {
	mu.RLock()
	defer mu.RUnlock()
	return verbosity
}

// SetOutput changes the output writer (useful for testing).
// The handler keeps writing to the writer it was created with.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func init() {
	output = os.Stderr
	verbosity = LevelQuiet
	logger = slog.New(newHandler(output, FormatText, slog.LevelWarn))
}
