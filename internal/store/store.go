package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/pfrederiksen/musiclist/internal/event"
	"github.com/pfrederiksen/musiclist/internal/logger"
)

var (
	// ErrVenueNotFound is returned when events are reconciled for a venue that was never saved
	ErrVenueNotFound = errors.New("venue not found")
	// ErrEventNotFound is returned by Event for an unknown ID
	ErrEventNotFound = errors.New("event not found")
)

// Store is the SQLite-backed event store
type Store struct {
	db     *bun.DB
	mu     sync.Mutex // serializes writes
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the clock used for timestamps and "upcoming" queries
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger; SQL statements are logged at debug level
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.Default(l)
	}
}

// Open opens (creating if needed) the database at path and creates the schema
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps SQLite writes and pragmas on a single handle
	sqldb.SetMaxOpenConns(1)

	s := &Store{
		db:     bun.NewDB(sqldb, sqlitedialect.New()),
		now:    time.Now,
		logger: logger.Default(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "store")
	s.db.AddQueryHook(&queryHook{logger: s.logger})

	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := s.CreateSchema(ctx); err != nil {
		_ = s.db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema creates tables and indexes if they do not exist
func (s *Store) CreateSchema(ctx context.Context) error {
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateTable().
			Model((*venueModel)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewCreateTable().
			Model((*eventModel)(nil)).
			IfNotExists().
			ForeignKey(`("venue_id") REFERENCES "venues" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return err
		}

		for name, column := range map[string]string{
			"idx_events_date":  "date",
			"idx_events_venue": "venue_id",
		} {
			if _, err := tx.NewCreateIndex().
				Model((*eventModel)(nil)).
				Index(name).
				Column(column).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveVenue inserts the venue or updates its URLs, returning its ID
func (s *Store) SaveVenue(ctx context.Context, v *event.Venue) (int64, error) {
	if v.Name == "" {
		return 0, fmt.Errorf("saving venue: %w", &event.ValidationError{Field: "name"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := &venueModel{
		Name:         v.Name,
		BaseURL:      v.BaseURL,
		CalendarPath: v.CalendarPath,
		CreatedAt:    s.now().UTC(),
	}

	var id int64
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(m).
			On("CONFLICT (name) DO UPDATE").
			Set("base_url = EXCLUDED.base_url").
			Set("calendar_path = EXCLUDED.calendar_path").
			Exec(ctx); err != nil {
			return err
		}
		return tx.NewSelect().
			Model((*venueModel)(nil)).
			Column("id").
			Where("v.name = ?", v.Name).
			Scan(ctx, &id)
	})
	if err != nil {
		return 0, fmt.Errorf("saving venue %s: %w", v.Name, err)
	}

	v.ID = id
	return id, nil
}

// Venue looks up a venue by name
func (s *Store) Venue(ctx context.Context, name string) (*event.Venue, error) {
	m := new(venueModel)
	if err := s.db.NewSelect().
		Model(m).
		Where("v.name = ?", name).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrVenueNotFound, name)
		}
		return nil, fmt.Errorf("loading venue %s: %w", name, err)
	}
	return m.toVenue(), nil
}

// Reconcile merges freshly scraped events for a venue into the store and returns
// how many were new. Existing events keep their ID and pinned flag; only time and
// cost are refreshed. Invalid candidates are skipped. The venue's last-scraped
// time is updated even when no events are given.
func (s *Store) Reconcile(ctx context.Context, venueName string, events []*event.Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	added := 0

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		venue := new(venueModel)
		if err := tx.NewSelect().
			Model(venue).
			Where("v.name = ?", venueName).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrVenueNotFound, venueName)
			}
			return err
		}

		for _, evt := range events {
			if err := evt.Validate(); err != nil {
				s.logger.Debug("skipping invalid event", "venue", venueName, "error", err)
				continue
			}

			isNew, err := s.reconcileOne(ctx, tx, venue.ID, evt, now)
			if err != nil {
				return err
			}
			if isNew {
				added++
			}
		}

		_, err := tx.NewUpdate().
			Model((*venueModel)(nil)).
			Set("last_scraped = ?", now).
			Where("v.id = ?", venue.ID).
			Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("reconciling %s: %w", venueName, err)
	}

	return added, nil
}

func (s *Store) reconcileOne(ctx context.Context, tx bun.Tx, venueID int64, evt *event.Event, now time.Time) (bool, error) {
	existing := new(eventModel)
	err := tx.NewSelect().
		Model(existing).
		Where("e.venue_id = ?", venueID).
		Where("e.date = ?", evt.DateString()).
		Where("e.artists = ?", evt.ArtistsDisplay()).
		Where("e.url = ?", evt.URL).
		Limit(1).
		Scan(ctx)

	switch {
	case err == nil:
		existing.setDetails(evt)
		if _, err := tx.NewUpdate().
			Model(existing).
			Column("time", "cost").
			WherePK().
			Exec(ctx); err != nil {
			return false, fmt.Errorf("updating event %d: %w", existing.ID, err)
		}
		evt.ID = existing.ID
		evt.Pinned = existing.Pinned
		return false, nil

	case errors.Is(err, sql.ErrNoRows):
		m := newEventModel(venueID, evt, now)
		res, err := tx.NewInsert().
			Model(m).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			// Identity already present, nothing returned
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("inserting event: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return false, nil
		}
		if m.ID == 0 {
			m.ID, _ = res.LastInsertId()
		}
		evt.ID = m.ID
		return true, nil

	default:
		return false, fmt.Errorf("looking up event: %w", err)
	}
}

// Pin marks an event as pinned. Returns false if no event has that ID.
func (s *Store) Pin(ctx context.Context, id int64) (bool, error) {
	return s.setPinned(ctx, id, true)
}

// Unpin clears the pinned flag. Returns false if no event has that ID.
func (s *Store) Unpin(ctx context.Context, id int64) (bool, error) {
	return s.setPinned(ctx, id, false)
}

func (s *Store) setPinned(ctx context.Context, id int64, pinned bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.NewUpdate().
		Model((*eventModel)(nil)).
		Set("pinned = ?", pinned).
		Where("e.id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("updating event %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating event %d: %w", id, err)
	}
	return n > 0, nil
}

// Event returns a single event by ID
func (s *Store) Event(ctx context.Context, id int64) (*event.Event, error) {
	m := new(eventModel)
	if err := s.db.NewSelect().
		Model(m).
		Relation("Venue").
		Where("e.id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrEventNotFound, id)
		}
		return nil, fmt.Errorf("loading event %d: %w", id, err)
	}
	return m.toEvent()
}

// ListRecent returns upcoming events, pinned first, then by date, time and ID.
// A limit of 0 or less returns every upcoming event.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*event.Event, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("e.date >= ?", s.today()).
			OrderExpr("e.pinned DESC, e.date ASC, e.time ASC, e.id ASC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	})
}

// ListPinned returns upcoming pinned events by date, time and ID
func (s *Store) ListPinned(ctx context.Context) ([]*event.Event, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("e.pinned = ?", true).
			Where("e.date >= ?", s.today()).
			OrderExpr("e.date ASC, e.time ASC, e.id ASC")
	})
}

// ListByVenue returns every stored event for a venue, past ones included
func (s *Store) ListByVenue(ctx context.Context, name string) ([]*event.Event, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("venue.name = ?", name).
			OrderExpr("e.date ASC, e.time ASC, e.id ASC")
	})
}

func (s *Store) list(ctx context.Context, build func(*bun.SelectQuery) *bun.SelectQuery) ([]*event.Event, error) {
	models := make([]*eventModel, 0)
	q := s.db.NewSelect().
		Model(&models).
		Relation("Venue")
	if err := build(q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	events := make([]*event.Event, 0, len(models))
	for _, m := range models {
		evt, err := m.toEvent()
		if err != nil {
			s.logger.Warn("skipping malformed row", "id", m.ID, "error", err)
			continue
		}
		events = append(events, evt)
	}
	return events, nil
}

func (s *Store) today() string {
	return event.Today(s.now()).Format(event.DateLayout)
}

// queryHook logs every statement at debug level
type queryHook struct {
	logger *slog.Logger
}

func (h *queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryHook) AfterQuery(ctx context.Context, e *bun.QueryEvent) {
	if !h.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := []any{"query", e.Query, "duration", time.Since(e.StartTime)}
	if e.Err != nil && !errors.Is(e.Err, sql.ErrNoRows) {
		attrs = append(attrs, "error", e.Err)
	}
	h.logger.Debug("sql", attrs...)
}
