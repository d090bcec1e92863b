package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/musiclist/internal/app"
	"github.com/pfrederiksen/musiclist/internal/config"
	"github.com/pfrederiksen/musiclist/internal/event"
	"github.com/pfrederiksen/musiclist/internal/filter"
	"github.com/pfrederiksen/musiclist/internal/logger"
	"github.com/pfrederiksen/musiclist/internal/metrics"
	"github.com/pfrederiksen/musiclist/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagDataDir   string
	flagVenues    string
	flagFormat    string
	flagVerbose   bool
	flagLogLevel  string
	flagLogFormat string

	flagRefresh     bool
	flagWorkers     int
	flagArtists     []string
	flagVenueFilter []string
	flagWeekends    bool
	flagStarred     bool
	flagMaxPrice    float64
	flagDates       string
	flagSort        string
	flagMetricsFile string

	flagLimit    int
	flagPinned   bool
	flagOut      string
	flagInterval time.Duration
)

// NewRootCmd creates the root command. Without a subcommand it shows the calendar.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "musiclist",
		Short: "Concert calendar for your favorite venues",
		Long: `A CLI tool that scrapes concert listings from venue websites into one
local calendar. Pin shows you care about and star your favorite venues.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCalendar,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagDataDir, "data-dir", "", "Data directory (default "+config.DefaultDataDir+", env MUSICLIST_DATA_DIR)")
	pf.StringVar(&flagVenues, "venues", "", "Venue list YAML file (env MUSICLIST_VENUES_FILE)")
	pf.StringVar(&flagFormat, "format", "text", "Output format: text or json")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (env MUSICLIST_LOG_LEVEL)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format: text or json (env MUSICLIST_LOG_FORMAT)")

	addCalendarFlags(cmd)

	cmd.AddCommand(
		newCalendarCmd(),
		newScrapeCmd(),
		newVenuesCmd(),
		newStarCmd(),
		newUnstarCmd(),
		newStarredCmd(),
		newPinCmd(),
		newUnpinCmd(),
		newPinnedCmd(),
		newRecentCmd(),
		newExportCmd(),
		newWatchCmd(),
	)

	return cmd
}

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Ignore stored events and cached pages and scrape every venue")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "Venues to scrape in parallel (env MUSICLIST_WORKERS)")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after scraping")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagArtists, "artist", nil, "Only shows with an artist matching this text (repeatable)")
	cmd.Flags().StringSliceVar(&flagVenueFilter, "venue", nil, "Only shows at a venue matching this text (repeatable)")
	cmd.Flags().BoolVar(&flagWeekends, "weekends", false, "Only Saturday and Sunday shows")
	cmd.Flags().BoolVar(&flagStarred, "starred", false, "Only shows at starred venues")
	cmd.Flags().Float64Var(&flagMaxPrice, "max-price", 0, "Only shows at or under this price in dollars")
	cmd.Flags().StringVar(&flagDates, "dates", "", "Only shows in this range, e.g. 'Jul 1-15', 'July 1 - August 15' or 'July'")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortByDate), "Sort order: date, venue or artist")
}

func addCalendarFlags(cmd *cobra.Command) {
	addScrapeFlags(cmd)
	addFilterFlags(cmd)
}

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show shows for this month and next (default)",
		Args:  cobra.NoArgs,
		RunE:  runCalendar,
	}
	addCalendarFlags(cmd)
	return cmd
}

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape every venue and show all upcoming shows",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}
	addCalendarFlags(cmd)
	return cmd
}

// session is what every command needs once configuration is resolved
type session struct {
	app     *app.App
	cfg     *config.Config
	metrics *metrics.Metrics
	format  OutputFormat
	out     io.Writer
}

func (s *session) Close() error {
	return s.app.Close()
}

// openSession loads configuration, applies flag overrides and opens the app
func openSession(cmd *cobra.Command) (*session, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	log, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	if _, err := cfg.ResolveDataDir(); err != nil {
		return nil, err
	}
	venues, err := config.LoadVenues(cfg.VenuesPath())
	if err != nil {
		return nil, err
	}

	if flagVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Data directory: %s\n", cfg.DataDir)
		fmt.Fprintf(cmd.ErrOrStderr(), "Venues: %s\n", strings.Join(config.VenueNames(config.EnabledVenues(venues)), ", "))
	}

	m := metrics.New()
	a, err := app.New(cmd.Context(), cfg, venues, app.Options{
		Logger:  log,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}

	return &session{
		app:     a,
		cfg:     cfg,
		metrics: m,
		format:  format,
		out:     cmd.OutOrStdout(),
	}, nil
}

// applyFlags copies explicitly set flags over the environment configuration
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if flags.Changed("venues") {
		cfg.VenuesFile = flagVenues
	}
	if flags.Changed("workers") {
		if flagWorkers < 1 {
			return fmt.Errorf("--workers must be at least 1")
		}
		cfg.Workers = flagWorkers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if flagVerbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return logger.New(logger.Options{
		Level:  level,
		Format: format,
		Output: w,
	}), nil
}

// buildFilter turns the filter flags into a Filter
func buildFilter(now time.Time) (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Artists = flagArtists
	f.Venues = flagVenueFilter
	f.WeekendsOnly = flagWeekends
	f.StarredOnly = flagStarred
	if flagMaxPrice < 0 {
		return nil, fmt.Errorf("--max-price cannot be negative")
	}
	f.MaxPrice = flagMaxPrice

	if flagDates != "" {
		from, to, err := filter.ParseDateRange(flagDates, now)
		if err != nil {
			return nil, fmt.Errorf("invalid --dates: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}
	return f, nil
}

func runCalendar(cmd *cobra.Command, args []string) error {
	return runEvents(cmd, true)
}

func runScrape(cmd *cobra.Command, args []string) error {
	return runEvents(cmd, false)
}

// runEvents scrapes and prints either the calendar window or every upcoming show
func runEvents(cmd *cobra.Command, window bool) error {
	now := time.Now()
	f, err := buildFilter(now)
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(flagSort)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var (
		events []*event.Event
		result *scraper.Result
	)
	if window {
		events, result, err = s.app.Calendar(cmd.Context(), flagRefresh)
	} else {
		result, err = s.app.ScrapeAll(cmd.Context(), flagRefresh)
		if result != nil {
			events = result.Events
		}
	}
	if err != nil {
		return fmt.Errorf("scraping venues: %w", err)
	}

	prefs, err := s.app.Preferences()
	if err != nil {
		return err
	}
	events = f.Apply(events, prefs.Starred())
	sortEvents(events, order)

	if flagMetricsFile != "" {
		if err := s.metrics.WriteTextfile(flagMetricsFile); err != nil {
			return err
		}
	}

	out := &OutputResult{
		GeneratedAt: now.UTC(),
		Title:       calendarTitle(now, window),
		Events:      events,
		EventCount:  len(events),
		Grouped:     order == SortByDate,
		Stats:       result.Stats,
		NewEvents:   result.NewEvents,
		Failures:    failureMessages(result.Failures),
		Starred:     prefs.Starred(),
	}
	if !f.IsEmpty() {
		out.Filter = f.String()
	}
	return WriteOutput(s.out, out, s.format, flagVerbose)
}

func calendarTitle(now time.Time, window bool) string {
	if !window {
		return "Upcoming shows"
	}
	next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return fmt.Sprintf("Music Calendar: %s & %s", now.Format("January"), next.Format("January 2006"))
}

func failureMessages(failures map[string]error) map[string]string {
	if len(failures) == 0 {
		return nil
	}
	msgs := make(map[string]string, len(failures))
	for venue, err := range failures {
		msgs[venue] = err.Error()
	}
	return msgs
}

// Execute runs the CLI, cancelling in-flight work on interrupt
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(ExitError)
	}
}
