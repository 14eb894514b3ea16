package format

import (
	"testing"
	"time"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{-5, "0"},
		{0, "0"},
		{999, "999"},
		{1000, "1k"},
		{1234, "1.2k"},
		{9999, "10k"},
		{12345, "12k"},
		{999_999, "999k"},
		{1_000_000, "1m"},
		{3_460_000, "3.5m"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatCount(tt.input); got != tt.expected {
				t.Errorf("FormatCount(%d) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatTimestampAge(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ts       string
		expected string
	}{
		{"three days", "2025-03-28T12:00:00Z", "3d"},
		{"two weeks", "2025-03-17T12:00:00Z", "2w"},
		{"future clamps to now", "2025-04-01T00:00:00Z", "now"},
		{"unparsable", "yesterday", "-"},
		{"empty", "", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestampAge(tt.ts, now); got != tt.expected {
				t.Errorf("FormatTimestampAge(%q) = %q, want %q", tt.ts, got, tt.expected)
			}
		})
	}
}

func TestScoreTier(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{1, TierStrong},
		{0.75, TierStrong},
		{0.74, TierFair},
		{0.5, TierFair},
		{0.49, TierWeak},
		{0, TierWeak},
	}
	for _, tt := range tests {
		if got := ScoreTier(tt.score); got != tt.want {
			t.Errorf("ScoreTier(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}
