// Package logcleanup removes system log lines older than the retention window.
package logcleanup

import (
	"strings"
	"time"

	"coin_backend/internal/platform/logger"
)

// DefaultWindow is the retention window used when none is configured.
const DefaultWindow = 5 * 24 * time.Hour

// Result is the outcome of a sweep.
type Result struct {
	Kept    []string
	Dropped []string
}

// Remaining returns the number of retained lines.
func (r Result) Remaining() int { return len(r.Kept) }

// ParseTimestamp reads the leading "[YYYY-MM-DD HH:MM:SS]" token of line as UTC.
func ParseTimestamp(line string) (time.Time, bool) {
	if !strings.HasPrefix(line, "[") {
		return time.Time{}, false
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(logger.FileTimeLayout, line[1:end], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Sweep drops the lines whose timestamp is strictly before now-window.
// Lines without a parseable timestamp are always kept. Order is preserved.
func Sweep(lines []string, now time.Time, window time.Duration) Result {
	cutoff := now.Add(-window)
	res := Result{Kept: make([]string, 0, len(lines))}
	for _, line := range lines {
		if ts, ok := ParseTimestamp(line); ok && ts.Before(cutoff) {
			res.Dropped = append(res.Dropped, line)
			continue
		}
		res.Kept = append(res.Kept, line)
	}
	return res
}
