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
	nwContainerClass = regexp.MustCompile(`(?i)event|show|concert`)
	nwKeywords       = []string{"show:", "doors:", "pm", "am", "$"}

	// "Sun, Jul 20", "Fri Aug 1" or "Sun, Jul 20, 2025"
	nwWeekdayDate = regexp.MustCompile(`(\w{3}),?\s+(\w{3})\s+(\d{1,2})\b(?:,\s*(\d{4})\b)?`)
	// "Aug.01.2025"
	nwDottedDate = regexp.MustCompile(`(\w{3})\.(\d{2})\.(\d{4})`)
	// "August 1, 2025"
	nwLongDate = regexp.MustCompile(`(\w+)\s+(\d{1,2}),?\s+(\d{4})`)

	nwShowTime = regexp.MustCompile(`(?i)Show:\s*(\d{1,2}:?\d{0,2})\s*(pm|am)`)
	nwAnyTime  = regexp.MustCompile(`(?i)(\d{1,2}:?\d{0,2})\s*(pm|am)`)

	nwClockLine   = regexp.MustCompile(`\d{1,2}:\d{2}`)
	nwPriceLine   = regexp.MustCompile(`\$\d+`)
	nwScheduleRef = regexp.MustCompile(`(?i)\b(doors|show|pm|am)\b`)

	nwNavLinks    = []string{"more info", "tickets", "details", "calendar", "contact"}
	nwTicketLinks = []string{"more info", "buy tickets", "details"}
	nwEventHrefs  = []string{"event", "show", "concert"}
)

// NeckOfTheWoods parses the Neck of the Woods calendar. The page has no stable
// markup, so containers are found by class name or, failing that, by scanning for
// schedule keywords, and every field is pulled out of the container text.
type NeckOfTheWoods struct {
	base
}

// Parse extracts events from the calendar page
func (p *NeckOfTheWoods) Parse(r io.Reader) ([]*event.Event, error) {
	doc, err := newDocument(r)
	if err != nil {
		return nil, err
	}
	return p.collect(p.containers(doc), p.parseEvent), nil
}

func (p *NeckOfTheWoods) containers(doc *goquery.Document) *goquery.Selection {
	// Only the innermost matches: a list wrapper such as div.events-list would
	// otherwise merge every card it holds into one event.
	found := doc.Find(nwBlocks).FilterFunction(nwClassMatch).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(nwBlocks).FilterFunction(nwClassMatch).Length() == 0
	})
	if found.Length() > 0 {
		return found
	}

	// No class markers, fall back to any block mentioning a schedule or a price
	return doc.Find("div, article, section").FilterFunction(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(s.Text())
		for _, kw := range nwKeywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	})
}

const nwBlocks = "div, article, li"

func nwClassMatch(_ int, s *goquery.Selection) bool {
	class, _ := s.Attr("class")
	return nwContainerClass.MatchString(class)
}

func (p *NeckOfTheWoods) parseEvent(s *goquery.Selection) *event.Event {
	text := s.Text()

	date, ok := p.extractDate(text)
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
	evt.Time = p.extractTime(text)
	evt.Cost, _ = ExtractPrice(text)
	return evt
}

func (p *NeckOfTheWoods) extractDate(text string) (time.Time, bool) {
	for _, m := range nwWeekdayDate.FindAllStringSubmatch(text, -1) {
		month, ok := MonthNumber(m[2])
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[3])
		year := ResolveYear(month, p.now())
		if m[4] != "" {
			year, _ = strconv.Atoi(m[4])
		}
		if date, ok := CivilDate(year, month, day); ok {
			return date, true
		}
	}

	for _, re := range []*regexp.Regexp{nwDottedDate, nwLongDate} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			month, ok := MonthNumber(m[1])
			if !ok {
				continue
			}
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			if date, ok := CivilDate(year, month, day); ok {
				return date, true
			}
		}
	}

	return time.Time{}, false
}

// extractTime prefers the show time over doors
func (p *NeckOfTheWoods) extractTime(text string) *event.Clock {
	for _, re := range []*regexp.Regexp{nwShowTime, nwAnyTime} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if clock, ok := ParseTimeAMPM(m[1] + " " + m[2]); ok {
			return clock
		}
	}
	return nil
}

func (p *NeckOfTheWoods) extractArtists(s *goquery.Selection) []string {
	artists := make([]string, 0)

	s.Find("a").Each(func(_ int, link *goquery.Selection) {
		text := strings.TrimSpace(link.Text())
		if text == "" || containsAny(strings.ToLower(text), nwNavLinks) {
			return
		}
		artists = appendUnique(artists, CleanArtistNames(text)...)
	})
	if len(artists) > 0 {
		return artists
	}

	s.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		if text := strings.TrimSpace(h.Text()); text != "" {
			artists = appendUnique(artists, CleanArtistNames(text)...)
		}
	})
	if len(artists) > 0 {
		return artists
	}

	// Last resort: the first line that is not a date, time or price
	for _, line := range strings.Split(s.Text(), "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 3 ||
			nwClockLine.MatchString(line) ||
			nwPriceLine.MatchString(line) ||
			nwScheduleRef.MatchString(line) {
			continue
		}
		if _, isDate := p.extractDate(line); isDate {
			continue
		}
		if names := CleanArtistNames(line); len(names) > 0 {
			return names[:1]
		}
	}

	return nil
}

func (p *NeckOfTheWoods) extractURL(s *goquery.Selection) string {
	links := s.Find("a[href]")

	var url string
	links.EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if !containsAny(strings.ToLower(link.Text()), nwTicketLinks) {
			return true
		}
		href, _ := link.Attr("href")
		url = ResolveURL(p.venue.BaseURL, href)
		return url == ""
	})
	if url != "" {
		return url
	}

	links.EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if !containsAny(href, nwEventHrefs) {
			return true
		}
		url = ResolveURL(p.venue.BaseURL, href)
		return url == ""
	})
	return url
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
