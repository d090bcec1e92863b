package parser

import (
	"testing"

	"github.com/pfrederiksen/musiclist/internal/event"
)

func TestNeckOfTheWoodsParse(t *testing.T) {
	venue := event.NewVenue("Neck of the Woods", "https://www.neckofthewoodssf.com", "/calendar/")

	tests := []struct {
		name    string
		fixture string
		want    []wantEvent
	}{
		{
			name:    "class markers",
			fixture: "neck_woods.html",
			want: []wantEvent{
				{
					date:    "2026-06-13",
					time:    "20:00",
					artists: []string{"LUCY DACUS", "JULIEN BAKER"},
					url:     "https://tickets.example.com/nw/1",
					cost:    "$18 - $22",
				},
				{
					date:    "2026-08-01",
					time:    "21:00",
					artists: []string{"SOCCER MOMMY"},
					url:     "https://www.neckofthewoodssf.com/shows/soccer-mommy/",
					cost:    "No cover",
				},
			},
		},
		{
			name:    "wrapped list keeps innermost cards",
			fixture: "neck_woods_wrapped.html",
			want: []wantEvent{
				{
					date:    "2026-07-11",
					time:    "20:00",
					artists: []string{"ALPHA"},
					url:     "https://www.neckofthewoodssf.com/event/1",
				},
				{
					date:    "2026-07-12",
					time:    "21:30",
					artists: []string{"BETA"},
					url:     "https://www.neckofthewoodssf.com/event/2",
					cost:    "$15",
				},
				{
					date:    "2025-07-20",
					artists: []string{"GAMMA"},
					url:     "https://www.neckofthewoodssf.com/event/3",
				},
			},
		},
		{
			name:    "keyword fallback",
			fixture: "neck_woods_plain.html",
			want: []wantEvent{
				{
					date:    "2026-06-17",
					time:    "20:30",
					artists: []string{"ALVVAYS"},
					url:     "https://www.neckofthewoodssf.com/concert/alvvays/",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := parseFixture(t, "neck_woods", venue, tt.fixture)
			checkEvents(t, "Neck of the Woods", events, tt.want)
		})
	}
}
