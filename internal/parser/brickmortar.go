package parser

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/musiclist/internal/event"
)

// BrickMortar parses the Brick & Mortar Music Hall calendar. Events are rendered by
// a ticketing widget as div.tw-cal-event-popup cards with "M.D" dates.
type BrickMortar struct {
	base
}

// Parse extracts events from the calendar page
func (p *BrickMortar) Parse(r io.Reader) ([]*event.Event, error) {
	doc, err := newDocument(r)
	if err != nil {
		return nil, err
	}
	return p.collect(doc.Find("div.tw-cal-event-popup"), p.parseEvent), nil
}

func (p *BrickMortar) parseEvent(s *goquery.Selection) *event.Event {
	date, ok := p.extractDate(s)
	if !ok {
		return nil
	}

	artists := p.extractArtists(s)
	if len(artists) == 0 {
		return nil
	}

	url := p.extractURL(s)
	if url == "" {
		return nil
	}

	evt := event.NewEvent(p.venue.Name, date, artists, url)
	evt.Time = p.extractTime(s)
	evt.Cost = p.extractCost(s)
	return evt
}

// extractDate reads "8.20" as August 20
func (p *BrickMortar) extractDate(s *goquery.Selection) (time.Time, bool) {
	text := strings.TrimSpace(s.Find("span.tw-event-date").First().Text())
	parts := strings.Split(text, ".")
	if len(parts) != 2 {
		return time.Time{}, false
	}

	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, false
	}

	m := time.Month(month)
	return CivilDate(ResolveYear(m, p.now()), m, day)
}

func (p *BrickMortar) extractTime(s *goquery.Selection) *event.Clock {
	clock, _ := ParseTimeAMPM(s.Find("span.tw-event-time-complete").First().Text())
	return clock
}

func (p *BrickMortar) extractArtists(s *goquery.Selection) []string {
	link := s.Find("div.tw-name a").First()
	if link.Length() == 0 {
		return nil
	}
	return CleanArtistNames(link.Text())
}

func (p *BrickMortar) extractURL(s *goquery.Selection) string {
	href, ok := s.Find("div.tw-name a[href]").First().Attr("href")
	if !ok {
		return ""
	}
	return ResolveURL(p.venue.BaseURL, href)
}

func (p *BrickMortar) extractCost(s *goquery.Selection) string {
	var cost string
	s.Find("span, div").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := el.Text()
		if !strings.Contains(text, "$") {
			return true
		}
		if price, ok := ExtractPrice(text); ok {
			cost = price
			return false
		}
		return true
	})
	if cost != "" {
		return cost
	}

	if strings.Contains(strings.ToLower(s.Text()), "free") {
		return "Free"
	}
	return ""
}
