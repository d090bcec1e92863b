package notifier

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/pfrederiksen/musiclist/internal/event"
)

func testEvent(artist string, day int) *event.Event {
	return event.NewEvent("The Warfield", time.Date(2026, time.June, day, 0, 0, 0, 0, time.UTC),
		[]string{artist}, "https://www.thewarfieldtheatre.com/events/"+artist)
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name string
		evt  func() *event.Event
		want string
	}{
		{
			name: "all fields",
			evt: func() *event.Event {
				e := testEvent("KHRUANGBIN", 13)
				e.Time = &event.Clock{Hour: 20}
				e.Cost = "$55"
				return e
			},
			want: "New show: KHRUANGBIN @ The Warfield, Sat Jun 13 8:00PM ($55) https://www.thewarfieldtheatre.com/events/KHRUANGBIN",
		},
		{
			name: "no time or cost",
			evt:  func() *event.Event { return testEvent("CLAUD", 19) },
			want: "New show: CLAUD @ The Warfield, Fri Jun 19 https://www.thewarfieldtheatre.com/events/CLAUD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEvent(tt.evt()); got != tt.want {
				t.Errorf("FormatEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)

	if err := n.Notify([]*event.Event{testEvent("A", 13), testEvent("B", 14)}); err != nil {
		t.Fatal(err)
	}
	if got := bytes.Count(buf.Bytes(), []byte("\n")); got != 2 {
		t.Errorf("expected 2 lines, got %d", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriterNotifierError(t *testing.T) {
	n := NewWriterNotifier(failingWriter{})
	if err := n.Notify([]*event.Event{testEvent("A", 13)}); err == nil {
		t.Error("expected write error")
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()

	// First run only primes
	if got := tr.Diff([]*event.Event{testEvent("A", 13), testEvent("B", 14)}); len(got) != 0 {
		t.Errorf("first Diff returned %d events, want 0", len(got))
	}

	got := tr.Diff([]*event.Event{testEvent("A", 13), testEvent("B", 14), testEvent("C", 15)})
	if len(got) != 1 || got[0].Artists[0] != "C" {
		t.Errorf("Diff() = %v, want only C", got)
	}

	if got := tr.Diff([]*event.Event{testEvent("C", 15)}); len(got) != 0 {
		t.Errorf("repeated event reported again: %v", got)
	}
	if tr.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tr.Len())
	}
}

var _ Notifier = (*WriterNotifier)(nil)
