package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/musiclist/internal/config"
	"github.com/pfrederiksen/musiclist/internal/event"
)

func outputEvent(id int64, day int, artists []string, venue string) *event.Event {
	evt := event.NewEvent(venue, time.Date(2026, time.June, day, 0, 0, 0, 0, time.UTC), artists, "https://example.com/"+venue)
	evt.ID = id
	return evt
}

func TestWriteOutputText(t *testing.T) {
	first := outputEvent(1, 13, []string{"LUCY DACUS"}, "Neck of the Woods")
	first.Time = &event.Clock{Hour: 20}
	first.Cost = "$18"
	first.Pinned = true
	second := outputEvent(2, 13, []string{"CLAUD"}, "The Warfield")
	third := outputEvent(3, 20, []string{"CAT POWER"}, "Brick & Mortar Music Hall")

	result := &OutputResult{
		Title:      "Music Calendar: June & July 2026",
		Events:     []*event.Event{first, second, third},
		EventCount: 3,
		Grouped:    true,
		Stats:      map[string]int{"The Warfield": 1, "Neck of the Woods": 1},
		NewEvents:  map[string]int{"The Warfield": 1},
		Failures:   map[string]string{"Brick & Mortar Music Hall": "timeout"},
		Starred:    []string{"the warfield"},
	}

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatText, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	wants := []string{
		"Music Calendar: June & July 2026\n",
		"\nSaturday, June 13\n",
		"\nSaturday, June 20\n",
		"8:00PM  LUCY DACUS @ Neck of the Woods  $18  [pinned]",
		"TBA  CLAUD @ The Warfield ★",
		"Total: 3 events",
		"  Brick & Mortar Music Hall: 0 events [failed: timeout]",
		"  The Warfield: 1 events (1 new)",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "Saturday, June 13") != 1 {
		t.Errorf("expected one heading per day:\n%s", out)
	}
}

func TestWriteOutputEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, &OutputResult{}, FormatText, false); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "No events found." {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWriteOutputJSON(t *testing.T) {
	evt := outputEvent(7, 19, []string{"BOYGENIUS"}, "The Warfield")
	result := &OutputResult{
		Title:      "Upcoming shows",
		Events:     []*event.Event{evt},
		EventCount: 1,
	}

	var buf bytes.Buffer
	if err := WriteOutput(&buf, result, FormatJSON, false); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["event_count"] != float64(1) {
		t.Errorf("event_count = %v", decoded["event_count"])
	}
	if _, ok := decoded["failures"]; ok {
		t.Error("empty failures should be omitted")
	}
}

func TestWriteOutputUnknownFormat(t *testing.T) {
	if err := WriteOutput(&bytes.Buffer{}, &OutputResult{}, "xml", false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteVenues(t *testing.T) {
	venues := config.DefaultVenues()

	var buf bytes.Buffer
	if err := WriteVenues(&buf, venues, []string{"The Warfield"}, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var listings []venueListing
	if err := json.Unmarshal(buf.Bytes(), &listings); err != nil {
		t.Fatal(err)
	}
	if len(listings) != 3 {
		t.Fatalf("expected 3 venues, got %d", len(listings))
	}
	if !listings[1].Starred || listings[0].Starred {
		t.Errorf("star flags wrong: %+v", listings)
	}
	if listings[1].CalendarURL != "https://www.thewarfieldtheatre.com/events/" {
		t.Errorf("CalendarURL = %q", listings[1].CalendarURL)
	}
}

func TestWriteStarredEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStarred(&buf, nil, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No venues are currently starred") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteStarred(&buf, nil, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `{
  "starred": []
}` {
		t.Errorf("unexpected JSON:\n%s", buf.String())
	}
}
