package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadVenuesMissingFile(t *testing.T) {
	venues, err := LoadVenues(filepath.Join(t.TempDir(), "venues.yaml"))
	if err != nil {
		t.Fatalf("LoadVenues() error = %v", err)
	}
	if !reflect.DeepEqual(venues, DefaultVenues()) {
		t.Errorf("expected default venues, got %+v", venues)
	}
}

func TestLoadVenues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venues.yaml")
	content := `venues:
  - name: The Warfield
    base_url: https://www.thewarfieldtheatre.com
    calendar_path: /events/
    parser: warfield
    enabled: true
  - name: Closed Club
    base_url: https://closed.example.com
    calendar_path: /calendar/
    parser: brick_mortar
    enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	venues, err := LoadVenues(path)
	if err != nil {
		t.Fatalf("LoadVenues() error = %v", err)
	}
	if len(venues) != 2 {
		t.Fatalf("expected 2 venues, got %d", len(venues))
	}

	enabled := EnabledVenues(venues)
	if len(enabled) != 1 || enabled[0].Name != "The Warfield" {
		t.Errorf("EnabledVenues() = %+v", enabled)
	}

	url := venues[0].Event().CalendarURL()
	if url != "https://www.thewarfieldtheatre.com/events/" {
		t.Errorf("CalendarURL() = %q", url)
	}
}

func TestLoadVenuesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "venues: [unterminated"},
		{"missing name", "venues:\n  - base_url: https://a.example.com\n    parser: warfield\n"},
		{"missing parser", "venues:\n  - name: A\n    base_url: https://a.example.com\n"},
		{"missing base url", "venues:\n  - name: A\n    parser: warfield\n"},
		{"duplicate", "venues:\n  - name: A\n    base_url: https://a.example.com\n    parser: warfield\n  - name: a\n    base_url: https://b.example.com\n    parser: warfield\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "venues.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadVenues(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveVenuesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venues.yaml")
	if err := SaveVenues(path, DefaultVenues()); err != nil {
		t.Fatalf("SaveVenues() error = %v", err)
	}
	venues, err := LoadVenues(path)
	if err != nil {
		t.Fatalf("LoadVenues() error = %v", err)
	}
	if !reflect.DeepEqual(venues, DefaultVenues()) {
		t.Errorf("round trip mismatch: %+v", venues)
	}
}

func TestFindVenue(t *testing.T) {
	venues := DefaultVenues()

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"The Warfield", "The Warfield", true},
		{"the warfield", "The Warfield", true},
		{"  NECK OF THE WOODS ", "Neck of the Woods", true},
		{"Fillmore", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			v, ok := FindVenue(venues, tt.query)
			if ok != tt.found {
				t.Fatalf("FindVenue(%q) found = %v, want %v", tt.query, ok, tt.found)
			}
			if v.Name != tt.want {
				t.Errorf("FindVenue(%q) = %q, want %q", tt.query, v.Name, tt.want)
			}
		})
	}
}

func TestVenueNames(t *testing.T) {
	want := []string{"Brick & Mortar Music Hall", "The Warfield", "Neck of the Woods"}
	if got := VenueNames(DefaultVenues()); !reflect.DeepEqual(got, want) {
		t.Errorf("VenueNames() = %v, want %v", got, want)
	}
}
