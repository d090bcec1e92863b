package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/musiclist/internal/calendar"
	"github.com/pfrederiksen/musiclist/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate   SortOrder = "date"
	SortByVenue  SortOrder = "venue"
	SortByArtist SortOrder = "artist"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case "":
		return SortByDate, nil
	case SortByDate, SortByVenue, SortByArtist:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'date', 'venue' or 'artist')", s)
	}
}

// sortEvents sorts a slice of events based on the specified sort order.
// Ties always fall back to calendar order.
func sortEvents(events []*event.Event, sortOrder SortOrder) {
	calendar.Sort(events)

	switch sortOrder {
	case SortByVenue:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Venue) < strings.ToLower(events[j].Venue)
		})
	case SortByArtist:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(headliner(events[i])) < strings.ToLower(headliner(events[j]))
		})
	}
}

func headliner(e *event.Event) string {
	if len(e.Artists) == 0 {
		return ""
	}
	return e.Artists[0]
}
