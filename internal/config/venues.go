package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/musiclist/internal/event"
)

// Venue describes one scraped venue
type Venue struct {
	Name         string `yaml:"name"`
	BaseURL      string `yaml:"base_url"`
	CalendarPath string `yaml:"calendar_path"`
	// Parser is the parser capability name, e.g. "warfield"
	Parser  string `yaml:"parser"`
	Enabled bool   `yaml:"enabled"`
}

// Event returns the venue identity used by the store and parsers
func (v Venue) Event() *event.Venue {
	return event.NewVenue(v.Name, v.BaseURL, v.CalendarPath)
}

type venuesFile struct {
	Venues []Venue `yaml:"venues"`
}

// DefaultVenues returns the built-in venue list
func DefaultVenues() []Venue {
	return []Venue{
		{
			Name:         "Brick & Mortar Music Hall",
			BaseURL:      "https://www.brickandmortarmusic.com",
			CalendarPath: "/calendar/",
			Parser:       "brick_mortar",
			Enabled:      true,
		},
		{
			Name:         "The Warfield",
			BaseURL:      "https://www.thewarfieldtheatre.com",
			CalendarPath: "/events/",
			Parser:       "warfield",
			Enabled:      true,
		},
		{
			Name:         "Neck of the Woods",
			BaseURL:      "https://www.neckofthewoodssf.com",
			CalendarPath: "/calendar/",
			Parser:       "neck_woods",
			Enabled:      true,
		},
	}
}

// LoadVenues reads the venue list at path, falling back to DefaultVenues when
// the file does not exist
func LoadVenues(path string) ([]Venue, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultVenues(), nil
		}
		return nil, fmt.Errorf("reading venues: %w", err)
	}

	var f venuesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing venues: %w", err)
	}
	if err := validateVenues(f.Venues); err != nil {
		return nil, err
	}
	return f.Venues, nil
}

// SaveVenues writes the venue list as YAML
func SaveVenues(path string, venues []Venue) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(venuesFile{Venues: venues})
	if err != nil {
		return fmt.Errorf("encoding venues: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing venues: %w", err)
	}
	return nil
}

func validateVenues(venues []Venue) error {
	seen := make(map[string]bool, len(venues))
	for i, v := range venues {
		if strings.TrimSpace(v.Name) == "" {
			return fmt.Errorf("venue %d: name is required", i+1)
		}
		key := strings.ToLower(v.Name)
		if seen[key] {
			return fmt.Errorf("venue %q listed twice", v.Name)
		}
		seen[key] = true
		if v.BaseURL == "" {
			return fmt.Errorf("venue %q: base_url is required", v.Name)
		}
		if v.Parser == "" {
			return fmt.Errorf("venue %q: parser is required", v.Name)
		}
	}
	return nil
}

// EnabledVenues returns the enabled venues in list order
func EnabledVenues(venues []Venue) []Venue {
	var enabled []Venue
	for _, v := range venues {
		if v.Enabled {
			enabled = append(enabled, v)
		}
	}
	return enabled
}

// FindVenue looks up a venue by name, case-insensitive
func FindVenue(venues []Venue, name string) (Venue, bool) {
	name = strings.TrimSpace(name)
	for _, v := range venues {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Venue{}, false
}

// VenueNames returns the venue names in list order
func VenueNames(venues []Venue) []string {
	names := make([]string, 0, len(venues))
	for _, v := range venues {
		names = append(names, v.Name)
	}
	return names
}
