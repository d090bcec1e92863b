package store

import (
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/pfrederiksen/musiclist/internal/event"
)

type venueModel struct {
	bun.BaseModel `bun:"table:venues,alias:v"`

	ID           int64      `bun:"id,pk,autoincrement"`
	Name         string     `bun:"name,notnull,unique"`
	BaseURL      string     `bun:"base_url,notnull"`
	CalendarPath string     `bun:"calendar_path,notnull"`
	LastScraped  *time.Time `bun:"last_scraped"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
}

func (m *venueModel) toVenue() *event.Venue {
	return &event.Venue{
		ID:           m.ID,
		Name:         m.Name,
		BaseURL:      m.BaseURL,
		CalendarPath: m.CalendarPath,
		LastScraped:  m.LastScraped,
		CreatedAt:    m.CreatedAt,
	}
}

type eventModel struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID        int64     `bun:"id,pk,autoincrement"`
	VenueID   int64     `bun:"venue_id,notnull,unique:event_identity"`
	Date      string    `bun:"date,notnull,unique:event_identity"`
	Time      *string   `bun:"time"`
	Artists   string    `bun:"artists,notnull,unique:event_identity"`
	URL       string    `bun:"url,notnull,unique:event_identity"`
	Cost      *string   `bun:"cost"`
	Pinned    bool      `bun:"pinned,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`

	Venue *venueModel `bun:"rel:belongs-to,join:venue_id=id"`
}

func newEventModel(venueID int64, evt *event.Event, now time.Time) *eventModel {
	m := &eventModel{
		VenueID:   venueID,
		Date:      evt.DateString(),
		Artists:   evt.ArtistsDisplay(),
		URL:       evt.URL,
		Pinned:    evt.Pinned,
		CreatedAt: now,
	}
	m.setDetails(evt)
	return m
}

// setDetails copies the fields a re-scrape is allowed to change
func (m *eventModel) setDetails(evt *event.Event) {
	m.Time = nil
	if evt.Time != nil {
		t := evt.Time.String()
		m.Time = &t
	}
	m.Cost = nil
	if evt.Cost != "" {
		c := evt.Cost
		m.Cost = &c
	}
}

func (m *eventModel) toEvent() (*event.Event, error) {
	date, err := event.ParseDate(m.Date)
	if err != nil {
		return nil, err
	}

	evt := &event.Event{
		ID:        m.ID,
		Date:      date,
		Artists:   splitArtists(m.Artists),
		URL:       m.URL,
		Pinned:    m.Pinned,
		CreatedAt: m.CreatedAt,
	}
	if m.Venue != nil {
		evt.Venue = m.Venue.Name
	}
	if m.Time != nil {
		if evt.Time, err = event.ParseClock(*m.Time); err != nil {
			return nil, err
		}
	}
	if m.Cost != nil {
		evt.Cost = *m.Cost
	}
	return evt, nil
}

func splitArtists(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ", ")
}
