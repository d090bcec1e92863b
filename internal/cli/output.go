package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/musiclist/internal/config"
	"github.com/pfrederiksen/musiclist/internal/event"
	"github.com/pfrederiksen/musiclist/internal/scraper"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Title       string            `json:"title"`
	Filter      string            `json:"filter,omitempty"`
	Events      []*event.Event    `json:"events"`
	EventCount  int               `json:"event_count"`
	Stats       map[string]int    `json:"venue_stats,omitempty"`
	NewEvents   map[string]int    `json:"new_events,omitempty"`
	Failures    map[string]string `json:"failures,omitempty"`
	Starred     []string          `json:"starred,omitempty"`
	// Grouped prints text output under one heading per day
	Grouped bool `json:"-"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Title != "" {
		fmt.Fprintf(w, "%s\n", result.Title)
		fmt.Fprintln(w, strings.Repeat("=", len(result.Title)))
	}
	if result.Filter != "" {
		fmt.Fprintf(w, "Filter: %s\n", result.Filter)
	}

	if result.EventCount == 0 {
		fmt.Fprintln(w, "No events found.")
	} else {
		var lastDay string
		for _, evt := range result.Events {
			if result.Grouped {
				if day := evt.Date.Format("Monday, January 2"); day != lastDay {
					fmt.Fprintf(w, "\n%s\n", day)
					lastDay = day
				}
				fmt.Fprintf(w, "  %s\n", formatEventLine(evt, result.Starred, false))
			} else {
				fmt.Fprintf(w, "%s\n", formatEventLine(evt, result.Starred, true))
			}
			if verbose {
				writeEventDetails(w, evt)
			}
		}
		fmt.Fprintf(w, "\nTotal: %d events\n", result.EventCount)
	}

	writeVenueSummary(w, result)
	return nil
}

// formatEventLine renders "#12  8:00 PM  ARTIST, ARTIST @ Venue  $20 *"
func formatEventLine(evt *event.Event, starred []string, withDate bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%-4d ", evt.ID)
	if withDate {
		fmt.Fprintf(&b, "%s  ", evt.Date.Format("Mon Jan 02"))
	}

	clock := "TBA"
	if evt.Time != nil {
		clock = evt.Time.Kitchen()
	}
	fmt.Fprintf(&b, "%8s  %s @ %s", clock, evt.ArtistsDisplay(), evt.Venue)
	if isStarred(evt.Venue, starred) {
		b.WriteString(" ★")
	}
	if evt.Cost != "" {
		fmt.Fprintf(&b, "  %s", evt.Cost)
	}
	if evt.Pinned {
		b.WriteString("  [pinned]")
	}
	return b.String()
}

func writeEventDetails(w io.Writer, evt *event.Event) {
	fmt.Fprintf(w, "       URL: %s\n", evt.URL)
	fmt.Fprintf(w, "       Key: %s\n", evt.Key())
}

func writeVenueSummary(w io.Writer, result *OutputResult) {
	if len(result.Stats) == 0 && len(result.Failures) == 0 {
		return
	}

	venues := make([]string, 0, len(result.Stats))
	for venue := range result.Stats {
		venues = append(venues, venue)
	}
	for venue := range result.Failures {
		if _, ok := result.Stats[venue]; !ok {
			venues = append(venues, venue)
		}
	}
	sort.Strings(venues)

	fmt.Fprintln(w, "\nVenues:")
	for _, venue := range venues {
		line := fmt.Sprintf("  %s: %d events", venue, result.Stats[venue])
		if n := result.NewEvents[venue]; n > 0 {
			line += fmt.Sprintf(" (%d new)", n)
		}
		if msg, ok := result.Failures[venue]; ok {
			line += fmt.Sprintf(" [failed: %s]", msg)
		}
		fmt.Fprintln(w, line)
	}
}

func isStarred(venue string, starred []string) bool {
	for _, s := range starred {
		if strings.EqualFold(s, venue) {
			return true
		}
	}
	return false
}

// venueListing is the JSON form of one venue
type venueListing struct {
	Name        string `json:"name"`
	CalendarURL string `json:"calendar_url"`
	Parser      string `json:"parser"`
	Starred     bool   `json:"starred"`
}

// WriteVenues lists venues with star markers
func WriteVenues(w io.Writer, venues []config.Venue, starred []string, format OutputFormat) error {
	if format == FormatJSON {
		listings := make([]venueListing, 0, len(venues))
		for _, v := range venues {
			listings = append(listings, venueListing{
				Name:        v.Name,
				CalendarURL: v.Event().CalendarURL(),
				Parser:      v.Parser,
				Starred:     isStarred(v.Name, starred),
			})
		}
		return writeJSON(w, listings)
	}

	fmt.Fprintln(w, "Available Venues:")
	fmt.Fprintln(w)
	count := 0
	for i, v := range venues {
		marker := ""
		if isStarred(v.Name, starred) {
			marker = " ★"
			count++
		}
		fmt.Fprintf(w, "  %d. %s%s\n", i+1, v.Name, marker)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d venues enabled\n", len(venues))
	if count > 0 {
		fmt.Fprintf(w, "Starred: %d venues\n", count)
	}
	return nil
}

// WriteStarred lists starred venues
func WriteStarred(w io.Writer, starred []string, format OutputFormat) error {
	if format == FormatJSON {
		if starred == nil {
			starred = []string{}
		}
		return writeJSON(w, map[string][]string{"starred": starred})
	}

	if len(starred) == 0 {
		fmt.Fprintln(w, "No venues are currently starred")
		fmt.Fprintln(w)
		fmt.Fprintln(w, `Tip: use 'musiclist star "VENUE NAME"' to star a venue`)
		return nil
	}

	fmt.Fprintln(w, "Starred Venues:")
	fmt.Fprintln(w)
	for i, venue := range starred {
		fmt.Fprintf(w, "  %d. %s\n", i+1, venue)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d starred venues\n", len(starred))
	return nil
}

// WriteMessage prints a one-line confirmation, or fields as JSON
func WriteMessage(w io.Writer, format OutputFormat, msg string, fields map[string]any) error {
	if format == FormatJSON {
		out := map[string]any{"message": msg}
		for k, v := range fields {
			out[k] = v
		}
		return writeJSON(w, out)
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

// WriteSummary prints the outcome of one watch tick
func WriteSummary(w io.Writer, result *scraper.Result, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, map[string]any{
			"run_id":     result.RunID,
			"events":     len(result.Events),
			"new_events": result.NewEvents,
			"failures":   failureMessages(result.Failures),
		})
	}
	_, err := fmt.Fprintf(w, "%s  %d upcoming events, %d new, %d venues failed\n",
		time.Now().Format(time.Kitchen), len(result.Events), result.TotalNew(), len(result.Failures))
	return err
}
