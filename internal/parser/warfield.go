package parser

import (
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/musiclist/internal/event"
)

var (
	// "Fri, Oct 24, 2025", "Oct 24" or "October 24 2025"
	wfDate       = regexp.MustCompile(`(?i)([a-z]{3,9})\.?\s+(\d{1,2})(?:,?\s+(\d{4}))?`)
	wfShowTime   = regexp.MustCompile(`(?i)show\s*:?\s*(\d{1,2}(?::\d{2})?\s*[ap]m)`)
	wfSupportPfx = regexp.MustCompile(`(?i)^\s*(with|w/|special guests?:?)\s+`)
)

// Warfield parses The Warfield events page: div.entry cards with a .date line,
// the headliner link in h3, support acts in h4 and a "Doors / Show" .time line.
type Warfield struct {
	base
}

// Parse extracts events from the events page
func (p *Warfield) Parse(r io.Reader) ([]*event.Event, error) {
	doc, err := newDocument(r)
	if err != nil {
		return nil, err
	}
	return p.collect(doc.Find("div.entry"), p.parseEvent), nil
}

func (p *Warfield) parseEvent(s *goquery.Selection) *event.Event {
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

func (p *Warfield) extractDate(s *goquery.Selection) (time.Time, bool) {
	text := s.Find(".date").First().Text()
	for _, m := range wfDate.FindAllStringSubmatch(text, -1) {
		month, ok := MonthNumber(m[1])
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[2])
		year := ResolveYear(month, p.now())
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		if date, ok := CivilDate(year, month, day); ok {
			return date, true
		}
	}
	return time.Time{}, false
}

func (p *Warfield) extractTime(s *goquery.Selection) *event.Clock {
	text := s.Find(".time").First().Text()
	if m := wfShowTime.FindStringSubmatch(text); m != nil {
		if clock, ok := ParseTimeAMPM(m[1]); ok {
			return clock
		}
	}
	clock, _ := ParseTimeAMPM(text)
	return clock
}

func (p *Warfield) extractArtists(s *goquery.Selection) []string {
	artists := CleanArtistNames(s.Find("h3 a").First().Text())
	if len(artists) == 0 {
		artists = CleanArtistNames(s.Find("h3").First().Text())
	}
	if len(artists) == 0 {
		return nil
	}

	s.Find("h4").Each(func(_ int, h *goquery.Selection) {
		support := wfSupportPfx.ReplaceAllString(CleanText(h.Text()), "")
		artists = appendUnique(artists, CleanArtistNames(support)...)
	})
	return artists
}

func (p *Warfield) extractURL(s *goquery.Selection) string {
	if href, ok := s.Find("h3 a[href]").First().Attr("href"); ok {
		if url := ResolveURL(p.venue.BaseURL, href); url != "" {
			return url
		}
	}

	var url string
	s.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if !strings.Contains(href, "/events/") {
			return true
		}
		url = ResolveURL(p.venue.BaseURL, href)
		return url == ""
	})
	return url
}

func (p *Warfield) extractCost(s *goquery.Selection) string {
	if cost, ok := ExtractPrice(s.Find(".price").First().Text()); ok {
		return cost
	}
	cost, _ := ExtractPrice(s.Text())
	return cost
}
