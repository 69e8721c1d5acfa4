package sensor

import (
	"fmt"
	"strings"
	"time"
)

// timeLayouts are tried in order. Layouts without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// ParseTimeBound parses a query bound.
//
// Accepted forms are RFC 3339 (fractional seconds optional), ISO-8601
// local date-times with a "T" or space separator (read as UTC), and bare
// dates (UTC midnight). An empty string means no bound and returns nil.
//
// Returns ErrInvalidTimeBound for anything else.
func ParseTimeBound(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := parseTimestamp(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeBound, s)
}
