package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/musiclist/internal/event"
	"github.com/pfrederiksen/musiclist/internal/logger"
	"github.com/pfrederiksen/musiclist/internal/metrics"
)

// ErrUnknownCapability is returned by New for an unregistered parser name
var ErrUnknownCapability = errors.New("unknown parser capability")

// Parser extracts candidate events from a venue's calendar page
type Parser interface {
	Parse(r io.Reader) ([]*event.Event, error)
}

// Option configures a parser
type Option func(*base)

// WithClock sets the clock used to resolve years for dates published without one
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the logger used to report skipped containers
func WithLogger(l *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger.Default(l)
	}
}

// WithMetrics counts rejected candidates per venue
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) {
		b.metrics = m
	}
}

type factory func(b base) Parser

var registry = map[string]factory{
	"brick_mortar": func(b base) Parser { return &BrickMortar{base: b} },
	"neck_woods":   func(b base) Parser { return &NeckOfTheWoods{base: b} },
	"warfield":     func(b base) Parser { return &Warfield{base: b} },
}

// New creates the parser registered under capability for a venue
func New(capability string, venue *event.Venue, opts ...Option) (Parser, error) {
	f, ok := registry[capability]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCapability, capability)
	}
	b := base{
		venue:  venue,
		now:    time.Now,
		logger: logger.Default(nil),
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = b.logger.With("venue", venue.Name, "parser", capability)
	return f(b), nil
}

// Capabilities returns the registered parser names, sorted
func Capabilities() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// base holds what every venue parser needs
type base struct {
	venue   *event.Venue
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// collect runs extract on every container. Containers that panic are skipped,
// candidates failing validation are dropped, and duplicates by identity key are
// emitted once.
func (b *base) collect(containers *goquery.Selection, extract func(*goquery.Selection) *event.Event) []*event.Event {
	events := make([]*event.Event, 0)
	seen := make(map[string]bool)

	containers.Each(func(i int, s *goquery.Selection) {
		evt := b.safeExtract(i, s, extract)
		if evt == nil {
			b.metrics.AddRejected(b.venue.Name, 1)
			return
		}
		if err := evt.Validate(); err != nil {
			b.logger.Debug("dropping candidate", "container", i, "error", err)
			b.metrics.AddRejected(b.venue.Name, 1)
			return
		}
		key := evt.Key()
		if seen[key] {
			return
		}
		seen[key] = true
		events = append(events, evt)
	})

	return events
}

func (b *base) safeExtract(i int, s *goquery.Selection, extract func(*goquery.Selection) *event.Event) (evt *event.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Debug("skipping container", "container", i, "panic", r)
			evt = nil
		}
	}()
	return extract(s)
}

func newDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
