// Package duration provides parsing for human-readable duration strings.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Parse parses human-readable durations like "36h", "1w", "30d", "6mo", "5y".
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	var n int
	var unit string
	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid duration format: %s (use e.g., 30d, 6mo, 2y)", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", s)
	}

	switch unit {
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(n) * time.Hour, nil
	case "d", "day", "days":
		return time.Duration(n) * day, nil
	case "w", "wk", "wks", "week", "weeks":
		return time.Duration(n) * 7 * day, nil
	case "mo", "month", "months":
		return time.Duration(n) * 30 * day, nil
	case "y", "yr", "yrs", "year", "years":
		return time.Duration(n) * 365 * day, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}

// Days converts a recency window to whole days, rounding partial days up.
// A bare number is taken as days; "0" disables the window.
func Days(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("duration must not be negative: %s", s)
		}
		return n, nil
	}

	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return int((d + day - 1) / day), nil
}
