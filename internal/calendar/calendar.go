package calendar

import (
	"sort"
	"time"

	"github.com/pfrederiksen/musiclist/internal/event"
)

// DefaultFreshness is how long a venue scrape is reused
const DefaultFreshness = 24 * time.Hour

// Window returns the calendar range [start, end): the first of now's month up to
// the first of the month after next
func Window(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 2, 0)
}

// FilterWindow keeps events inside Window(now) that are not in the past
func FilterWindow(events []*event.Event, now time.Time) []*event.Event {
	start, end := Window(now)
	today := event.Today(now)

	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if evt.Date.Before(start) || !evt.Date.Before(end) {
			continue
		}
		if evt.Date.Before(today) {
			continue
		}
		filtered = append(filtered, evt)
	}
	return filtered
}

// FilterUpcoming keeps events dated today or later
func FilterUpcoming(events []*event.Event, now time.Time) []*event.Event {
	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if !evt.IsPast(now) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// UseCached reports whether stored events for a venue can be used instead of
// scraping: the venue was scraped before, within freshness, and no refresh is forced
func UseCached(lastScraped *time.Time, freshness time.Duration, now time.Time, force bool) bool {
	if force || lastScraped == nil {
		return false
	}
	return now.Sub(*lastScraped) < freshness
}

// Sort orders events by date, then time (events without a time first), then ID
func Sort(events []*event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if am, bm := clockMinutes(a), clockMinutes(b); am != bm {
			return am < bm
		}
		return a.ID < b.ID
	})
}

// clockMinutes sorts a missing time before midnight
func clockMinutes(e *event.Event) int {
	if e.Time == nil {
		return -1
	}
	return e.Time.Minutes()
}
