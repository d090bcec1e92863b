package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/musiclist/internal/event"
)

const (
	prodID = "-//musiclist//musiclist//EN"

	// showLength is the assumed duration of a timed event
	showLength = 3 * time.Hour
)

// GenerateICS generates an iCalendar (.ics) file holding every event. Returns ""
// when there are no events.
func GenerateICS(events []*event.Event, calName string) string {
	if len(events) == 0 {
		return ""
	}

	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + prodID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calName != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(calName)))
	}

	stamp := formatICSTime(time.Now())
	for _, evt := range events {
		writeEvent(&ics, evt, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, stamp string) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	// UID stays stable across re-scrapes because it hashes the identity key
	ics.WriteString(fmt.Sprintf("UID:%s@musiclist\r\n", evt.Key()))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))

	if evt.Time != nil {
		// Floating local time: shows are listed in the venue's own time zone
		start := time.Date(evt.Date.Year(), evt.Date.Month(), evt.Date.Day(),
			evt.Time.Hour, evt.Time.Minute, 0, 0, time.UTC)
		ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatLocalTime(start)))
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatLocalTime(start.Add(showLength))))
	} else {
		ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", formatICSDate(evt.Date)))
		ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", formatICSDate(evt.Date.AddDate(0, 0, 1))))
	}

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(evt.ArtistsDisplay())))

	description := fmt.Sprintf("%s at %s", evt.ArtistsDisplay(), evt.Venue)
	if evt.Cost != "" {
		description += "\nCost: " + evt.Cost
	}
	if evt.URL != "" {
		description += "\nTickets: " + evt.URL
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))
	ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(evt.Venue)))

	if evt.URL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", evt.URL))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// formatICSTime formats a time.Time as a UTC iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatLocalTime formats a floating (zone-less) iCalendar datetime
func formatLocalTime(t time.Time) string {
	return t.Format("20060102T150405")
}

func formatICSDate(t time.Time) string {
	return t.Format("20060102")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
