package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/musiclist/internal/cache"
	"github.com/pfrederiksen/musiclist/internal/calendar"
	"github.com/pfrederiksen/musiclist/internal/config"
	"github.com/pfrederiksen/musiclist/internal/event"
	"github.com/pfrederiksen/musiclist/internal/fetch"
	"github.com/pfrederiksen/musiclist/internal/logger"
	"github.com/pfrederiksen/musiclist/internal/metrics"
	"github.com/pfrederiksen/musiclist/internal/preferences"
	"github.com/pfrederiksen/musiclist/internal/scraper"
	"github.com/pfrederiksen/musiclist/internal/store"
)

// CalendarName is the X-WR-CALNAME of exported calendars
const CalendarName = "musiclist"

// ErrUnknownVenue is returned for a venue name that is not configured
var ErrUnknownVenue = errors.New("unknown venue")

// Options holds dependencies that are not part of the configuration
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Client overrides the HTTP client used for fetching
	Client *http.Client
	Now    func() time.Time
}

// App is the core API behind the command line
type App struct {
	cfg     *config.Config
	venues  []config.Venue
	store   *store.Store
	pages   *cache.FileCache
	orch    *scraper.Orchestrator
	prefs   preferences.Storage
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New opens the data directory, the store and the page cache
func New(ctx context.Context, cfg *config.Config, venues []config.Venue, opts Options) (*App, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := logger.Default(opts.Logger)

	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}

	pages, err := cache.New(cfg.CacheDir())
	if err != nil {
		return nil, fmt.Errorf("opening page cache: %w", err)
	}
	pages.SetClock(opts.Now)

	st, err := store.Open(ctx, cfg.DatabasePath(),
		store.WithClock(opts.Now),
		store.WithLogger(log))
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(pages, fetch.Options{
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.FetchTimeout,
		MaxAttempts:   cfg.MaxAttempts,
		BaseDelay:     cfg.BaseDelay,
		MaxAge:        cfg.Freshness,
		RatePerSecond: cfg.RatePerSecond,
		Client:        opts.Client,
		Logger:        log,
		Metrics:       opts.Metrics,
	})

	orch := scraper.New(st, fetcher, scraper.Options{
		Workers:   cfg.Workers,
		Freshness: cfg.Freshness,
		Now:       opts.Now,
		Logger:    log,
		Metrics:   opts.Metrics,
	})

	return &App{
		cfg:     cfg,
		venues:  venues,
		store:   st,
		pages:   pages,
		orch:    orch,
		prefs:   preferences.NewFileStorage(filepath.Join(dataDir, preferences.FileName)),
		now:     opts.Now,
		logger:  log.With("component", "app"),
		metrics: opts.Metrics,
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	return a.store.Close()
}

// Venues returns the enabled venues
func (a *App) Venues() []config.Venue {
	return config.EnabledVenues(a.venues)
}

// ScrapeAll scrapes every enabled venue and returns all upcoming events.
// Cache entries past the freshness window are purged afterwards.
func (a *App) ScrapeAll(ctx context.Context, force bool) (*scraper.Result, error) {
	result, err := a.orch.Run(ctx, a.venues, force)
	if err != nil {
		return result, err
	}

	if removed, err := a.pages.Purge(a.cfg.Freshness); err != nil {
		a.logger.Warn("purging page cache failed", "error", err)
	} else if removed > 0 {
		a.logger.Debug("purged page cache", "removed", removed)
	}
	return result, nil
}

// Calendar scrapes (honoring freshness) and returns the events of the current
// and next month, sorted
func (a *App) Calendar(ctx context.Context, force bool) ([]*event.Event, *scraper.Result, error) {
	result, err := a.ScrapeAll(ctx, force)
	if err != nil {
		return nil, result, err
	}
	events := calendar.FilterWindow(result.Events, a.now())
	calendar.Sort(events)
	return events, result, nil
}

// Pin marks an event. Returns false when no event has that ID.
func (a *App) Pin(ctx context.Context, id int64) (bool, error) {
	return a.store.Pin(ctx, id)
}

// Unpin clears an event's pin. Returns false when no event has that ID.
func (a *App) Unpin(ctx context.Context, id int64) (bool, error) {
	return a.store.Unpin(ctx, id)
}

// Event returns a stored event
func (a *App) Event(ctx context.Context, id int64) (*event.Event, error) {
	return a.store.Event(ctx, id)
}

// ListRecent returns upcoming stored events, pinned first
func (a *App) ListRecent(ctx context.Context, limit int) ([]*event.Event, error) {
	return a.store.ListRecent(ctx, limit)
}

// ListPinned returns upcoming pinned events
func (a *App) ListPinned(ctx context.Context) ([]*event.Event, error) {
	return a.store.ListPinned(ctx)
}

// VenueEvents returns the upcoming stored events for a venue, matched case-insensitively
func (a *App) VenueEvents(ctx context.Context, name string) ([]*event.Event, error) {
	v, err := a.findVenue(name)
	if err != nil {
		return nil, err
	}
	events, err := a.store.ListByVenue(ctx, v.Name)
	if err != nil {
		return nil, err
	}
	return calendar.FilterUpcoming(events, a.now()), nil
}

// ExportICS renders upcoming stored events, or only pinned ones, as iCalendar.
// An empty string means there was nothing to export.
func (a *App) ExportICS(ctx context.Context, pinnedOnly bool) (string, error) {
	var (
		events []*event.Event
		err    error
	)
	if pinnedOnly {
		events, err = a.store.ListPinned(ctx)
	} else {
		events, err = a.store.ListRecent(ctx, 0)
	}
	if err != nil {
		return "", err
	}
	calendar.Sort(events)
	return calendar.GenerateICS(events, CalendarName), nil
}

// Preferences loads the user's preferences
func (a *App) Preferences() (*preferences.Preferences, error) {
	return a.prefs.Load()
}

// StarVenue stars a configured venue and returns its canonical name. changed is
// false when the venue was already starred.
func (a *App) StarVenue(name string) (string, bool, error) {
	return a.updateStar(name, (*preferences.Preferences).Star)
}

// UnstarVenue removes a star. changed is false when the venue was not starred.
func (a *App) UnstarVenue(name string) (string, bool, error) {
	return a.updateStar(name, (*preferences.Preferences).Unstar)
}

func (a *App) updateStar(name string, apply func(*preferences.Preferences, string) bool) (string, bool, error) {
	v, err := a.findVenue(name)
	if err != nil {
		return "", false, err
	}

	prefs, err := a.prefs.Load()
	if err != nil {
		return "", false, err
	}
	if !apply(prefs, v.Name) {
		return v.Name, false, nil
	}
	if err := a.prefs.Save(prefs); err != nil {
		return "", false, err
	}
	return v.Name, true, nil
}

func (a *App) findVenue(name string) (config.Venue, error) {
	enabled := a.Venues()
	v, ok := config.FindVenue(enabled, name)
	if !ok {
		return config.Venue{}, fmt.Errorf("%w: %q (available: %s)",
			ErrUnknownVenue, name, strings.Join(config.VenueNames(enabled), ", "))
	}
	return v, nil
}
