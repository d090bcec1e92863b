// Package filter narrows a list of events for display.
//
// Filters combine any of these criteria, all of which must hold:
//   - Date range (from/to dates, inclusive)
//   - Venue names (substring matching, case-insensitive)
//   - Artist names (substring matching against any billed artist, case-insensitive)
//   - Weekends only (Saturday/Sunday)
//   - Starred venues only
//   - Maximum price (lowest dollar amount in the cost text)
//
// Example usage:
//
//	// Weekend shows at the Warfield under $40
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Venues = []string{"warfield"}
//	f.MaxPrice = 40
//
//	filtered := f.Apply(events, prefs.Starred())
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/musiclist/internal/event"
)

var (
	dollarPattern = regexp.MustCompile(`\$\s*(\d+(?:\.\d{1,2})?)`)
	zeroCostWords = []string{"free", "no cover"}
)

// Filter represents event filtering criteria
type Filter struct {
	// Date range filtering
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Venue name filtering (case-insensitive substring match)
	Venues []string `json:"venues,omitempty"`

	// Artist filtering (case-insensitive substring match on any artist)
	Artists []string `json:"artists,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// Only venues the user starred
	StarredOnly bool `json:"starred_only,omitempty"`

	// Price filtering; events whose cost cannot be read always pass
	MaxPrice float64 `json:"max_price,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Venues:  []string{},
		Artists: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all events.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Venues) == 0 &&
		len(f.Artists) == 0 &&
		!f.WeekendsOnly &&
		!f.StarredOnly &&
		f.MaxPrice == 0
}

// Matches checks if an event matches all active filter criteria.
// starred lists the user's starred venue names and is only consulted when
// StarredOnly is set. An empty filter matches all events.
func (f *Filter) Matches(evt *event.Event, starred []string) bool {
	// Empty filter matches all events
	if f.IsEmpty() {
		return true
	}

	// Check date range
	if f.DateFrom != nil && evt.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && evt.Date.After(*f.DateTo) {
		return false
	}

	// Check weekends only
	if f.WeekendsOnly && !evt.IsWeekend() {
		return false
	}

	// Check venue name (case-insensitive substring match)
	if len(f.Venues) > 0 && !containsFold(evt.Venue, f.Venues) {
		return false
	}

	// Check artists: any billed artist may match any wanted name
	if len(f.Artists) > 0 {
		matched := false
		for _, artist := range evt.Artists {
			if containsFold(artist, f.Artists) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	// Check starred venues (exact, case-insensitive)
	if f.StarredOnly {
		matched := false
		for _, name := range starred {
			if strings.EqualFold(evt.Venue, name) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	// Check max price
	if f.MaxPrice > 0 {
		if price, ok := ParsePrice(evt.Cost); ok && price > f.MaxPrice {
			return false
		}
	}

	return true
}

// Apply applies the filter to a list of events and returns only matching events.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(events []*event.Event, starred []string) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt, starred) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Returns "No active filters" if the filter is empty.
// Format: "From: Jun 1, 2026 | Venues: warfield | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}

	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}

	if len(f.Artists) > 0 {
		parts = append(parts, fmt.Sprintf("Artists: %s", strings.Join(f.Artists, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	if f.StarredOnly {
		parts = append(parts, "Starred venues")
	}

	if f.MaxPrice > 0 {
		parts = append(parts, fmt.Sprintf("Max price: $%.2f", f.MaxPrice))
	}

	return strings.Join(parts, " | ")
}

// ParsePrice reads the lowest dollar amount from free-text cost such as "$15-$25"
// or "$20.00 adv". "Free" and "no cover" read as 0. Returns false when the text
// carries no recognizable price.
func ParsePrice(cost string) (float64, bool) {
	lower := strings.ToLower(cost)

	matches := dollarPattern.FindAllStringSubmatch(cost, -1)
	if len(matches) == 0 {
		for _, word := range zeroCostWords {
			if strings.Contains(lower, word) {
				return 0, true
			}
		}
		return 0, false
	}

	lowest := -1.0
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if lowest < 0 || v < lowest {
			lowest = v
		}
	}
	if lowest < 0 {
		return 0, false
	}
	return lowest, true
}

func containsFold(s string, subs []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(strings.TrimSpace(sub))) {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		WeekendsOnly: f.WeekendsOnly,
		StarredOnly:  f.StarredOnly,
		MaxPrice:     f.MaxPrice,
	}

	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}

	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}

	clone.Venues = append([]string{}, f.Venues...)
	clone.Artists = append([]string{}, f.Artists...)

	return clone
}
