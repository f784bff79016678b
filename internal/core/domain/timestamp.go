package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layouts carrying an explicit zone. time.Parse accepts fractional seconds
// after the seconds field even when the layout does not name them.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02 15:04:05Z07",
}

// Layouts without a zone designator; these are always read as UTC.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseServerTime parses a timestamp produced by the backend. A value without
// an offset or trailing Z is interpreted as UTC, never as local time.
func ParseServerTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// FormatServerTime renders t the way the backend expects it.
func FormatServerTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Timestamp is a backend instant that decodes through ParseServerTime. The
// zero value encodes as null.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t normalised to UTC.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t.UTC()} }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(FormatServerTime(t.Time))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseServerTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
