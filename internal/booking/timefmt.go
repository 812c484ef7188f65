package booking

import (
	"strconv"
	"strings"
	"time"
)

// minUnixSeconds rejects short integers such as 20250601 that are dates
// typed without separators, not epoch seconds. It is 2001-09-09.
const minUnixSeconds = 1_000_000_000

// Layouts without a zone offset; they are read in the configured location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// NormalizeTime resolves a client supplied reservation time to a canonical
// UTC instant with whole-second precision. Zoneless inputs are interpreted
// in loc (UTC when nil). Plain integers of ten or more digits are unix seconds.
func NormalizeTime(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, validationError("time is required", map[string]string{"time": "time is required"})
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return canonical(t), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return canonical(t), nil
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs >= minUnixSeconds {
		return canonical(time.Unix(secs, 0)), nil
	}

	return time.Time{}, validationError("time has an unsupported format", map[string]string{
		"time": "use RFC3339 (2025-06-01T19:00:00Z), YYYY-MM-DD HH:MM[:SS] or unix seconds",
	})
}

func canonical(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
