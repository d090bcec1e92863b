package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/musiclist/internal/cache"
	"github.com/pfrederiksen/musiclist/internal/calendar"
	"github.com/pfrederiksen/musiclist/internal/config"
	"github.com/pfrederiksen/musiclist/internal/event"
	"github.com/pfrederiksen/musiclist/internal/logger"
	"github.com/pfrederiksen/musiclist/internal/metrics"
	"github.com/pfrederiksen/musiclist/internal/parser"
	"github.com/pfrederiksen/musiclist/internal/store"
)

// Fetcher retrieves a venue's calendar page
type Fetcher interface {
	Fetch(ctx context.Context, venue, url string) (string, error)
	Refetch(ctx context.Context, venue, url string) (string, error)
}

// Options configures an Orchestrator
type Options struct {
	// Workers bounds how many venues are scraped at once; values below 1 mean 1
	Workers int
	// Freshness is how long stored events are reused before re-scraping
	Freshness time.Duration
	Now       func() time.Time
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Result is the outcome of one run
type Result struct {
	RunID string
	// Events are the upcoming events of every venue, sorted
	Events []*event.Event
	// Stats maps venue name to the number of upcoming events returned for it
	Stats map[string]int
	// NewEvents maps venue name to the number of events first seen in this run
	NewEvents map[string]int
	// Failures maps venue name to the error that prevented a fresh scrape
	Failures map[string]error
}

// TotalNew returns the number of new events across venues
func (r *Result) TotalNew() int {
	total := 0
	for _, n := range r.NewEvents {
		total += n
	}
	return total
}

// Orchestrator scrapes venues into the store
type Orchestrator struct {
	store   *store.Store
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates an Orchestrator
func New(st *store.Store, f Fetcher, opts Options) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Freshness <= 0 {
		opts.Freshness = cache.DefaultMaxAge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		store:   st,
		fetcher: f,
		opts:    opts,
		logger:  logger.Default(opts.Logger).With("component", "scraper"),
		metrics: opts.Metrics,
	}
}

// venueResult is what one unit of work produces
type venueResult struct {
	events []*event.Event
	added  int
	err    error
}

// Run scrapes every enabled venue. force skips the freshness check and the page
// cache. The returned error is non-nil only when ctx ends the run early.
func (o *Orchestrator) Run(ctx context.Context, venues []config.Venue, force bool) (*Result, error) {
	runID := uuid.NewString()
	log := o.logger.With("run_id", runID)
	enabled := config.EnabledVenues(venues)

	result := &Result{
		RunID:     runID,
		Events:    make([]*event.Event, 0),
		Stats:     make(map[string]int),
		NewEvents: make(map[string]int),
		Failures:  make(map[string]error),
	}

	log.Info("starting scrape", "venues", len(enabled), "workers", o.opts.Workers, "force", force)
	start := time.Now()
	now := o.opts.Now()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(o.opts.Workers)

	for _, v := range enabled {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			began := time.Now()
			vr := o.scrapeVenue(ctx, v, force, log.With("venue", v.Name))
			o.metrics.ObserveScrape(v.Name, time.Since(began))

			upcoming := calendar.FilterUpcoming(vr.events, now)
			o.metrics.SetEvents(v.Name, len(upcoming))
			o.metrics.AddNewEvents(v.Name, vr.added)

			mu.Lock()
			defer mu.Unlock()
			result.Events = append(result.Events, upcoming...)
			result.Stats[v.Name] = len(upcoming)
			if vr.added > 0 {
				result.NewEvents[v.Name] = vr.added
			}
			if vr.err != nil {
				result.Failures[v.Name] = vr.err
			}
			return nil
		})
	}
	_ = g.Wait()

	calendar.Sort(result.Events)
	o.metrics.RunCompleted(o.opts.Now())

	log.Info("scrape complete",
		"events", len(result.Events),
		"new", result.TotalNew(),
		"failures", len(result.Failures),
		"duration", time.Since(start).Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("scrape interrupted: %w", err)
	}
	return result, nil
}

func (o *Orchestrator) scrapeVenue(ctx context.Context, v config.Venue, force bool, log *slog.Logger) venueResult {
	venue := v.Event()

	var lastScraped *time.Time
	prev, err := o.store.Venue(ctx, venue.Name)
	switch {
	case err == nil:
		lastScraped = prev.LastScraped
	case !errors.Is(err, store.ErrVenueNotFound):
		log.Error("loading venue failed", "error", err)
		return venueResult{err: err}
	}

	if _, err := o.store.SaveVenue(ctx, venue); err != nil {
		log.Error("saving venue failed", "error", err)
		return venueResult{err: err}
	}

	if calendar.UseCached(lastScraped, o.opts.Freshness, o.opts.Now(), force) {
		log.Debug("using stored events", "last_scraped", lastScraped.Format(time.RFC3339))
		return o.stored(ctx, venue.Name, nil, log)
	}

	events, added, err := o.scrape(ctx, v, venue, force, log)
	if err != nil {
		log.Warn("scrape failed, using stored events", "error", err)
		return o.stored(ctx, venue.Name, err, log)
	}
	if len(events) == 0 {
		log.Warn("scrape found no events, using stored events")
		return o.stored(ctx, venue.Name, nil, log)
	}

	log.Info("scraped venue", "events", len(events), "new", added)
	return venueResult{events: events, added: added}
}

// scrape fetches, parses and reconciles one venue
func (o *Orchestrator) scrape(ctx context.Context, v config.Venue, venue *event.Venue, force bool, log *slog.Logger) ([]*event.Event, int, error) {
	p, err := parser.New(v.Parser, venue,
		parser.WithClock(o.opts.Now),
		parser.WithLogger(log),
		parser.WithMetrics(o.metrics))
	if err != nil {
		return nil, 0, err
	}

	fetch := o.fetcher.Fetch
	if force {
		fetch = o.fetcher.Refetch
	}
	content, err := fetch(ctx, venue.Name, venue.CalendarURL())
	if err != nil {
		return nil, 0, err
	}

	events, err := p.Parse(strings.NewReader(content))
	if err != nil {
		return nil, 0, fmt.Errorf("parsing %s: %w", venue.Name, err)
	}

	added, err := o.store.Reconcile(ctx, venue.Name, events)
	if err != nil {
		return nil, 0, err
	}
	return events, added, nil
}

// stored returns the venue's persisted events, carrying cause as the venue's failure
func (o *Orchestrator) stored(ctx context.Context, name string, cause error, log *slog.Logger) venueResult {
	events, err := o.store.ListByVenue(ctx, name)
	if err != nil {
		log.Error("loading stored events failed", "error", err)
		if cause == nil {
			cause = err
		}
		return venueResult{err: cause}
	}
	return venueResult{events: events, err: cause}
}
