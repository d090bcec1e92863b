package calendar

import (
	"testing"
	"time"

	"github.com/pfrederiksen/musiclist/internal/event"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid June",
			now:       time.Date(2026, time.June, 15, 18, 30, 0, 0, time.UTC),
			wantStart: date(2026, time.June, 1),
			wantEnd:   date(2026, time.August, 1),
		},
		{
			name:      "November crosses the year",
			now:       time.Date(2026, time.November, 30, 0, 0, 0, 0, time.UTC),
			wantStart: date(2026, time.November, 1),
			wantEnd:   date(2027, time.January, 1),
		},
		{
			name:      "December",
			now:       time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC),
			wantStart: date(2026, time.December, 1),
			wantEnd:   date(2027, time.February, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.now)
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("Window() = [%v, %v), want [%v, %v)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestFilterWindow(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	mk := func(d time.Time) *event.Event {
		return event.NewEvent("hall", d, []string{"X"}, "https://x")
	}

	events := []*event.Event{
		mk(date(2026, time.June, 1)),   // in window but past
		mk(date(2026, time.June, 14)),  // past
		mk(date(2026, time.June, 15)),  // today
		mk(date(2026, time.July, 31)),  // last day of window
		mk(date(2026, time.August, 1)), // end is exclusive
		mk(date(2027, time.June, 15)),  // far future
	}

	got := FilterWindow(events, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].DateString() != "2026-06-15" || got[1].DateString() != "2026-07-31" {
		t.Errorf("unexpected events %s, %s", got[0].DateString(), got[1].DateString())
	}

	upcoming := FilterUpcoming(events, now)
	if len(upcoming) != 4 {
		t.Errorf("FilterUpcoming kept %d, want 4", len(upcoming))
	}
}

func TestUseCached(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}

	tests := []struct {
		name        string
		lastScraped *time.Time
		force       bool
		want        bool
	}{
		{"one hour ago is fresh", ago(time.Hour), false, true},
		{"25 hours ago is stale", ago(25 * time.Hour), false, false},
		{"never scraped", nil, false, false},
		{"forced refresh", ago(time.Minute), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UseCached(tt.lastScraped, DefaultFreshness, now, tt.force); got != tt.want {
				t.Errorf("UseCached() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSort(t *testing.T) {
	d1 := date(2026, time.June, 20)
	d2 := date(2026, time.June, 21)

	mk := func(id int64, d time.Time, clock *event.Clock) *event.Event {
		e := event.NewEvent("hall", d, []string{"X"}, "https://x")
		e.ID = id
		e.Time = clock
		return e
	}

	events := []*event.Event{
		mk(1, d2, nil),
		mk(2, d1, &event.Clock{Hour: 21}),
		mk(3, d1, &event.Clock{Hour: 19, Minute: 30}),
		mk(4, d1, nil),
		mk(5, d1, &event.Clock{Hour: 19, Minute: 30}),
	}
	Sort(events)

	want := []int64{4, 3, 5, 2, 1}
	for i, id := range want {
		if events[i].ID != id {
			got := make([]int64, len(events))
			for j, e := range events {
				got[j] = e.ID
			}
			t.Fatalf("Sort() order = %v, want %v", got, want)
		}
	}
}
