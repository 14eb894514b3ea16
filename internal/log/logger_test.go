package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitialize(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	if Verbosity() != LevelInfo {
		t.Errorf("expected verbosity %d, got %d", LevelInfo, Verbosity())
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelTrace, &buf)

	Info("test info", "key", "value")
	Debug("test debug", "key", "value")
	Trace("test trace", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")

	for _, want := range []string{"test info", "test debug", "test trace", "test warn", "test error"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestQuietSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelQuiet, &buf)

	Info("hidden")
	Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output at quiet level, got %q", buf.String())
	}

	Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected warn output at quiet level")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithFormat(LevelInfo, &buf, FormatJSON)

	Info("request served", "status", 200)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "request served" {
		t.Errorf("msg = %v, want %q", line["msg"], "request served")
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	ctx := NewContext(context.Background(), With("request_id", "abc123"))
	FromContext(ctx).Info("scoped")

	if !strings.Contains(buf.String(), "request_id=abc123") {
		t.Errorf("expected request_id attribute, got %q", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Error("expected global logger when context carries none")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("Enriching %d%%", 50)
	ProgressDone()

	Progress("Another progress")
	ProgressClear()

	if !strings.Contains(buf.String(), "done") {
		t.Errorf("expected progress completion, got %q", buf.String())
	}
}

func TestVerbosityLevels(t *testing.T) {
	tests := []struct {
		level   int
		isInfo  bool
		isDebug bool
		isTrace bool
	}{
		{LevelQuiet, false, false, false},
		{LevelInfo, true, false, false},
		{LevelDebug, true, true, false},
		{LevelTrace, true, true, true},
	}

	var buf bytes.Buffer
	for _, tt := range tests {
		Initialize(tt.level, &buf)

		if IsInfo() != tt.isInfo {
			t.Errorf("at level %d: expected IsInfo()=%v, got %v", tt.level, tt.isInfo, IsInfo())
		}
		if IsDebug() != tt.isDebug {
			t.Errorf("at level %d: expected IsDebug()=%v, got %v", tt.level, tt.isDebug, IsDebug())
		}
		if IsTrace() != tt.isTrace {
			t.Errorf("at level %d: expected IsTrace()=%v, got %v", tt.level, tt.isTrace, IsTrace())
		}
	}
}
