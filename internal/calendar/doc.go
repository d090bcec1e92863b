// Package calendar decides which events make up the calendar view and exports
// them as iCalendar files.
//
// The view window runs from the first of the current month up to the first of
// the month after next, never including past dates. Cached venue data is reused
// while it is younger than the freshness window unless a refresh is forced.
package calendar
