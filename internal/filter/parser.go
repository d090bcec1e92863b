package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/musiclist/internal/parser"
)

var (
	monthDayRange   = regexp.MustCompile(`(?i)^([a-z]+\.?)\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	monthMonthRange = regexp.MustCompile(`(?i)^([a-z]+\.?)\s+(\d{1,2})\s*-\s*([a-z]+\.?)\s+(\d{1,2})$`)
	singleMonth     = regexp.MustCompile(`(?i)^([a-z]+\.?)$`)
)

// ParseDateRange parses a date range string into start and end times.
//
// Supported formats:
//   - "Jul 1-15" or "July 1-15" - Same month, different days
//   - "July 1 - August 15" - Different months
//   - "July" - Entire month
//
// Years are inferred relative to now: a month earlier than now's month is next
// year, and for cross-month ranges an end month before the start month rolls
// over too. Start is at 00:00:00 and end at 23:59:59, UTC.
func ParseDateRange(input string, now time.Time) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	// Format 1: "Jul 1-15"
	if m := monthDayRange.FindStringSubmatch(input); m != nil {
		month, ok := parser.MonthNumber(m[1])
		if !ok {
			return nil, nil, fmt.Errorf("invalid month: %s", m[1])
		}
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[3])
		if err != nil {
			return nil, nil, err
		}

		year := parser.ResolveYear(month, now)
		from := time.Date(year, month, day1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, month, day2, 23, 59, 59, 0, time.UTC)

		if from.After(to) {
			return nil, nil, fmt.Errorf("start date must be before end date")
		}
		return &from, &to, nil
	}

	// Format 2: "Jul 1 - Aug 15"
	if m := monthMonthRange.FindStringSubmatch(input); m != nil {
		month1, ok := parser.MonthNumber(m[1])
		if !ok {
			return nil, nil, fmt.Errorf("invalid month: %s", m[1])
		}
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		month2, ok := parser.MonthNumber(m[3])
		if !ok {
			return nil, nil, fmt.Errorf("invalid month: %s", m[3])
		}
		day2, err := parseDay(m[4])
		if err != nil {
			return nil, nil, err
		}

		year1 := parser.ResolveYear(month1, now)
		year2 := year1
		// If month2 < month1, assume month2 is in the following year
		if month2 < month1 {
			year2++
		}

		from := time.Date(year1, month1, day1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year2, month2, day2, 23, 59, 59, 0, time.UTC)

		if from.After(to) {
			return nil, nil, fmt.Errorf("start date must be before end date")
		}
		return &from, &to, nil
	}

	// Format 3: Single month "July" (entire month)
	if m := singleMonth.FindStringSubmatch(input); m != nil {
		month, ok := parser.MonthNumber(m[1])
		if !ok {
			return nil, nil, fmt.Errorf("invalid month: %s", m[1])
		}

		year := parser.ResolveYear(month, now)
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		// Last day of month
		to := time.Date(year, month+1, 0, 23, 59, 59, 0, time.UTC)
		return &from, &to, nil
	}

	return nil, nil, fmt.Errorf("invalid date range format. Use 'Jul 1-15', 'July 1 - August 15', or 'July'")
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("invalid day: %s", s)
	}
	return day, nil
}
