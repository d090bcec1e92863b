// Package event provides the canonical concert and venue types shared by the
// parsers, the store and the calendar view.
//
// An event's identity is the tuple (venue, date, artists, url). Two events with the
// same identity are the same logical concert regardless of when they were scraped,
// which is what lets the store preserve pins across re-scrapes. Key returns a
// deterministic SHA1 of that tuple for in-memory deduplication.
package event
