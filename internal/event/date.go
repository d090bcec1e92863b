package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the persisted form of an event date
const DateLayout = "2006-01-02"

// DateOf returns the civil date of t (its year, month and day at midnight UTC).
// Civil dates compare correctly regardless of the zone they were read in.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the civil date of now
func Today(now time.Time) time.Time {
	return DateOf(now)
}

// ParseDate parses a YYYY-MM-DD date into a civil date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// Clock is a wall-clock time of day without a date
type Clock struct {
	Hour   int
	Minute int
}

// NewClock validates and creates a Clock
func NewClock(hour, minute int) (*Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid time %d:%d", hour, minute)
	}
	return &Clock{Hour: hour, Minute: minute}, nil
}

// ParseClock parses an HH:MM string
func ParseClock(s string) (*Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	return NewClock(hour, minute)
}

// String formats the clock as HH:MM (24-hour)
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Kitchen formats the clock as "8:00 PM"
func (c Clock) Kitchen() string {
	return time.Date(0, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format(time.Kitchen)
}

// Minutes returns minutes since midnight
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// MarshalJSON encodes the clock as "HH:MM"
func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON decodes an "HH:MM" string
func (c *Clock) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("decoding time: %w", err)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}
