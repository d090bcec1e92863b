package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/musiclist/internal/app"
	"github.com/pfrederiksen/musiclist/internal/config"
	"github.com/pfrederiksen/musiclist/internal/notifier"
)

// DefaultWatchInterval is how often watch re-scrapes
const DefaultWatchInterval = 6 * time.Hour

func newVenuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "venues",
		Short: "List enabled venues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			prefs, err := s.app.Preferences()
			if err != nil {
				return err
			}
			return WriteVenues(s.out, s.app.Venues(), prefs.Starred(), s.format)
		},
	}
}

func newStarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "star VENUE",
		Short: "Star a venue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStar(cmd, args[0], true)
		},
	}
}

func newUnstarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unstar VENUE",
		Short: "Remove a venue's star",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStar(cmd, args[0], false)
		},
	}
}

func runStar(cmd *cobra.Command, name string, star bool) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	update := s.app.UnstarVenue
	if star {
		update = s.app.StarVenue
	}
	venue, changed, err := update(name)
	if err != nil {
		if errors.Is(err, app.ErrUnknownVenue) {
			return fmt.Errorf("venue %q not found; available venues: %v", name, config.VenueNames(s.app.Venues()))
		}
		return err
	}

	var msg string
	switch {
	case star && changed:
		msg = fmt.Sprintf("Starred %s", venue)
	case star:
		msg = fmt.Sprintf("%s is already starred", venue)
	case changed:
		msg = fmt.Sprintf("Unstarred %s", venue)
	default:
		msg = fmt.Sprintf("%s was not starred", venue)
	}
	return WriteMessage(s.out, s.format, msg, map[string]any{
		"venue":   venue,
		"starred": star,
		"changed": changed,
	})
}

func newStarredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "starred",
		Short: "List starred venues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			prefs, err := s.app.Preferences()
			if err != nil {
				return err
			}
			return WriteStarred(s.out, prefs.Starred(), s.format)
		},
	}
}

func parseEventID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid event ID: %s", arg)
	}
	return id, nil
}

func newPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin ID",
		Short: "Pin an event so it is listed first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPin(cmd, args[0], true)
		},
	}
}

func newUnpinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpin ID",
		Short: "Unpin an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPin(cmd, args[0], false)
		},
	}
}

func runPin(cmd *cobra.Command, arg string, pin bool) error {
	id, err := parseEventID(arg)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	update := s.app.Unpin
	if pin {
		update = s.app.Pin
	}
	ok, err := update(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("event %d not found", id)
	}

	evt, err := s.app.Event(cmd.Context(), id)
	if err != nil {
		return err
	}
	verb := "Unpinned"
	if pin {
		verb = "Pinned"
	}
	return WriteMessage(s.out, s.format,
		fmt.Sprintf("%s #%d: %s @ %s (%s)", verb, id, evt.ArtistsDisplay(), evt.Venue, evt.DateString()),
		map[string]any{"event": evt})
}

func newPinnedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pinned",
		Short: "List upcoming pinned events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			events, err := s.app.ListPinned(cmd.Context())
			if err != nil {
				return err
			}
			return WriteOutput(s.out, &OutputResult{
				GeneratedAt: time.Now().UTC(),
				Title:       "Pinned shows",
				Events:      events,
				EventCount:  len(events),
				Grouped:     true,
			}, s.format, flagVerbose)
		},
	}
}

func newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List stored upcoming events without scraping, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagLimit < 0 {
				return fmt.Errorf("--limit cannot be negative")
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			events, err := s.app.ListRecent(cmd.Context(), flagLimit)
			if err != nil {
				return err
			}
			return WriteOutput(s.out, &OutputResult{
				GeneratedAt: time.Now().UTC(),
				Title:       "Stored shows",
				Events:      events,
				EventCount:  len(events),
			}, s.format, flagVerbose)
		},
	}
	cmd.Flags().IntVar(&flagLimit, "limit", 50, "Maximum events to list (0 for all)")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored upcoming events as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ics, err := s.app.ExportICS(cmd.Context(), flagPinned)
			if err != nil {
				return err
			}
			if ics == "" {
				return fmt.Errorf("no events to export")
			}

			if flagOut == "" || flagOut == "-" {
				_, err := fmt.Fprint(s.out, ics)
				return err
			}
			if err := os.WriteFile(flagOut, []byte(ics), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", flagOut, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", flagOut)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagPinned, "pinned", false, "Export only pinned events")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file (default stdout)")
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-scrape every venue on an interval until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	addScrapeFlags(cmd)
	cmd.Flags().DurationVar(&flagInterval, "interval", DefaultWatchInterval, "Time between scrapes")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	if flagInterval < time.Minute {
		return fmt.Errorf("--interval must be at least 1m")
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	tracker := notifier.NewTracker()
	var announce notifier.Notifier = notifier.NewWriterNotifier(s.out)

	// Each tick honors freshness so an interval shorter than it only re-reads the store
	job := func() {
		result, err := s.app.ScrapeAll(ctx, flagRefresh)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			return
		}
		if flagMetricsFile != "" {
			if err := s.metrics.WriteTextfile(flagMetricsFile); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
		}
		if err := WriteSummary(s.out, result, s.format); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		// The first tick only primes the tracker
		fresh := tracker.Diff(result.Events)
		if s.format == FormatText {
			if err := announce.Notify(fresh); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
		}
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(flagInterval),
		gocron.NewTask(job),
		gocron.WithName("scrape"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		return fmt.Errorf("create scrape job: %w", err)
	}

	scheduler.Start()
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d venues every %s (Ctrl-C to stop)\n", len(s.app.Venues()), flagInterval)

	<-ctx.Done()
	if err := scheduler.Shutdown(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}
