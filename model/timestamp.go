package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// layouts with an explicit offset, the offset from the source is kept.
var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04Z07:00",
	"20060102T150405.999999999Z07:00",
	"20060102T150405.999999999Z0700",
	"20060102T150405.999999999Z07",
}

// layouts without an offset are read as UTC. The service sends inserted_at
// as a naive timestamp.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	"20060102T150405.999999999",
	"20060102T1504",
	"20060102",
}

var errBadTimestamp = errors.New("not an ISO-8601 timestamp")

// ParseTime parses the ISO-8601 timestamps the service uses.
func ParseTime(s string) (time.Time, error) {
	t, err := parseISO(s)
	if err != nil {
		return time.Time{}, malformed("timestamp", "", err)
	}

	return t, nil
}

func parseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", errBadTimestamp, s)
}

// parseTimeField is what the parsers use: empty means the field wasn't
// sent, anything else has to parse.
func parseTimeField(entity, field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := parseISO(s)
	if err != nil {
		return time.Time{}, malformed(entity, field, err)
	}

	return t, nil
}
