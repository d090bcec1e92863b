package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/pfrederiksen/musiclist/internal/event"
)

var (
	timePattern = regexp.MustCompile(`(?i)(\d{1,2}):?(\d{2})?\s*(am|pm)`)

	quotedPattern    = regexp.MustCompile(`["“”][^"“”]*["“”]`)
	emDashPattern    = regexp.MustCompile(`—.*$`)
	tourPattern      = regexp.MustCompile(`(?i)\s+-\s*.*\btour\b.*$`)
	separatorPattern = regexp.MustCompile(`,|&| AND | WITH `)

	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$\d+(?:\.\d{2})?(?:\s*-\s*\$\d+(?:\.\d{2})?)?`),
		regexp.MustCompile(`(?i)\bfree\b`),
		regexp.MustCompile(`(?i)\bno cover\b`),
		regexp.MustCompile(`(?i)\bdonation\b`),
		regexp.MustCompile(`(?i)\btbd\b`),
	}
)

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ParseTimeAMPM extracts a 12-hour time such as "8:00 pm" or "11:30AM".
// Minutes default to 0. Returns false when no am/pm time is present.
func ParseTimeAMPM(text string) (*event.Clock, bool) {
	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	minute := 0
	if m[2] != "" {
		if minute, err = strconv.Atoi(m[2]); err != nil {
			return nil, false
		}
	}

	switch strings.ToLower(m[3]) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	clock, err := event.NewClock(hour, minute)
	if err != nil {
		return nil, false
	}
	return clock, true
}

// MonthNumber maps a full or abbreviated month name to its number, case-insensitive
func MonthNumber(name string) (time.Month, bool) {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	m, ok := months[key]
	return m, ok
}

// ResolveYear picks the year for a month published without one: a month earlier
// than the current month belongs to next year.
func ResolveYear(month time.Month, now time.Time) int {
	if month < now.Month() {
		return now.Year() + 1
	}
	return now.Year()
}

// CivilDate builds a date, rejecting days that overflow the month
func CivilDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// CleanArtistNames strips tour annotations from a billing line and splits it into
// uppercase artist names, preserving billing order.
func CleanArtistNames(text string) []string {
	text = quotedPattern.ReplaceAllString(text, "")
	text = emDashPattern.ReplaceAllString(text, "")
	text = tourPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	upper := cases.Upper(language.Und)
	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, part := range separatorPattern.Split(text, -1) {
		name := CleanText(part)
		if name == "" {
			continue
		}
		name = norm.NFC.String(upper.String(name))
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ExtractPrice finds a price in free text: dollar amounts and ranges first, then
// "free", "no cover", "donation" or "tbd".
func ExtractPrice(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, p := range pricePatterns {
		if match := p.FindString(text); match != "" {
			return strings.TrimSpace(match), true
		}
	}
	return "", false
}

// CleanText collapses runs of whitespace
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ResolveURL resolves href against base. Returns "" if either cannot be parsed.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ""
	}
	return b.ResolveReference(ref).String()
}

// appendUnique appends names not already present in dst
func appendUnique(dst []string, names ...string) []string {
	for _, n := range names {
		dup := false
		for _, d := range dst {
			if d == n {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, n)
		}
	}
	return dst
}
