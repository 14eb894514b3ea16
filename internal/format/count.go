package format

import (
	"fmt"
	"strings"
	"time"
)

// FormatCount formats a count compactly: "950", "1.2k", "12k", "3.4m".
func FormatCount(n int) string {
	switch {
	case n < 0:
		return "0"
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 10_000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1000)) + "k"
	case n < 1_000_000:
		return fmt.Sprintf("%dk", n/1000)
	default:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1_000_000)) + "m"
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}

// FormatTimestampAge formats an ISO-8601 timestamp as an age relative to
// now. Unparsable input yields "-".
func FormatTimestampAge(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return "-"
	}
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	return FormatAge(d)
}

// Tier buckets a score in [0,1] for display.
type Tier int

const (
	TierWeak Tier = iota
	TierFair
	TierStrong
)

// ScoreTier returns the display tier for a score.
func ScoreTier(score float64) Tier {
	switch {
	case score >= 0.75:
		return TierStrong
	case score >= 0.5:
		return TierFair
	default:
		return TierWeak
	}
}
