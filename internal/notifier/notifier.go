package notifier

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pfrederiksen/musiclist/internal/event"
)

// Notifier defines the interface for announcing events
type Notifier interface {
	// Notify announces the given events
	Notify(events []*event.Event) error
}

// WriterNotifier prints one line per event
type WriterNotifier struct {
	w io.Writer
}

// NewWriterNotifier creates a notifier writing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify prints the events
func (n *WriterNotifier) Notify(events []*event.Event) error {
	for _, evt := range events {
		if _, err := fmt.Fprintln(n.w, FormatEvent(evt)); err != nil {
			return fmt.Errorf("writing notification: %w", err)
		}
	}
	return nil
}

// FormatEvent renders "New show: ARTIST @ Venue, Sat Jun 13 8:00PM ($18) https://..."
func FormatEvent(evt *event.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New show: %s @ %s, %s", evt.ArtistsDisplay(), evt.Venue, evt.Date.Format("Mon Jan 2"))
	if evt.Time != nil {
		fmt.Fprintf(&b, " %s", evt.Time.Kitchen())
	}
	if evt.Cost != "" {
		fmt.Fprintf(&b, " (%s)", evt.Cost)
	}
	if evt.URL != "" {
		fmt.Fprintf(&b, " %s", evt.URL)
	}
	return b.String()
}

// Tracker remembers events by identity key
type Tracker struct {
	mu     sync.Mutex
	seen   map[string]bool
	primed bool
}

// NewTracker creates an empty Tracker
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]bool)}
}

// Diff returns the events not seen in earlier calls and remembers them. The
// first call only records what exists and returns nothing.
func (t *Tracker) Diff(events []*event.Event) []*event.Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	fresh := make([]*event.Event, 0)
	for _, evt := range events {
		key := evt.Key()
		if t.seen[key] {
			continue
		}
		t.seen[key] = true
		if t.primed {
			fresh = append(fresh, evt)
		}
	}
	t.primed = true
	return fresh
}

// Len returns how many events have been seen
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
