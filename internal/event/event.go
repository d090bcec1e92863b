package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// DefaultCalendarPath is used when a venue is configured without a calendar path
const DefaultCalendarPath = "/calendar/"

// Venue represents a concert venue whose calendar page is scraped
type Venue struct {
	ID           int64      `json:"id,omitempty"`
	Name         string     `json:"name"`
	BaseURL      string     `json:"base_url"`
	CalendarPath string     `json:"calendar_path"`
	LastScraped  *time.Time `json:"last_scraped,omitempty"`
	CreatedAt    time.Time  `json:"created_at,omitempty"`
}

// NewVenue creates a Venue, defaulting the calendar path
func NewVenue(name, baseURL, calendarPath string) *Venue {
	if calendarPath == "" {
		calendarPath = DefaultCalendarPath
	}
	return &Venue{
		Name:         strings.TrimSpace(name),
		BaseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		CalendarPath: calendarPath,
	}
}

// CalendarURL joins the base URL and the calendar path
func (v *Venue) CalendarURL() string {
	path := v.CalendarPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(v.BaseURL, "/") + path
}

// Event represents a single concert listing
type Event struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Time      *Clock    `json:"time,omitempty"`
	Artists   []string  `json:"artists"`
	Venue     string    `json:"venue"`
	URL       string    `json:"url"`
	Cost      string    `json:"cost,omitempty"` // free text, passed through unchanged
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// NewEvent creates a candidate Event for a venue. The date is truncated to a civil date.
func NewEvent(venue string, date time.Time, artists []string, url string) *Event {
	evt := &Event{
		Artists: artists,
		Venue:   venue,
		URL:     strings.TrimSpace(url),
	}
	if !date.IsZero() {
		evt.Date = DateOf(date)
	}
	return evt
}

// ArtistsDisplay returns the normalized artist string used in the identity key
func (e *Event) ArtistsDisplay() string {
	return strings.Join(e.Artists, ", ")
}

// DateString returns the event date in YYYY-MM-DD form
func (e *Event) DateString() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(DateLayout)
}

// TimeString returns the event time in HH:MM form, or "" when unknown
func (e *Event) TimeString() string {
	if e.Time == nil {
		return ""
	}
	return e.Time.String()
}

// IdentityKey is the tuple that defines logical event equality across scrapes
type IdentityKey struct {
	Venue   string
	Date    string
	Artists string
	URL     string
}

// Identity returns the event's identity key
func (e *Event) Identity() IdentityKey {
	return IdentityKey{
		Venue:   e.Venue,
		Date:    e.DateString(),
		Artists: e.ArtistsDisplay(),
		URL:     e.URL,
	}
}

// Key returns a deterministic hash of the identity key
func (e *Event) Key() string {
	id := e.Identity()
	return GenerateKey(id.Venue, id.Date, id.Artists, id.URL)
}

// GenerateKey creates a deterministic SHA1 key from the identity fields
func GenerateKey(venue, date, artists, url string) string {
	h := sha1.New()
	h.Write([]byte(venue + "|" + date + "|" + artists + "|" + url))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ValidationError reports a candidate event missing a mandatory field
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "invalid event: missing " + e.Field
}

// Validate checks the mandatory fields: date, at least one artist and a source URL
func (e *Event) Validate() error {
	if e.Date.IsZero() {
		return &ValidationError{Field: "date"}
	}
	hasArtist := false
	for _, a := range e.Artists {
		if strings.TrimSpace(a) != "" {
			hasArtist = true
			break
		}
	}
	if !hasArtist {
		return &ValidationError{Field: "artists"}
	}
	if strings.TrimSpace(e.URL) == "" {
		return &ValidationError{Field: "url"}
	}
	return nil
}

// IsPast reports whether the event date is before today
func (e *Event) IsPast(now time.Time) bool {
	return e.Date.Before(Today(now))
}

// IsWeekend reports whether the event falls on a Saturday or Sunday
func (e *Event) IsWeekend() bool {
	wd := e.Date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
