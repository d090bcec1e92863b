package preferences

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileName is the preferences file inside the data directory
const FileName = "preferences.json"

// Preferences holds the user's starred venues
type Preferences struct {
	StarredVenues []string `json:"starred_venues"`
}

// Storage defines the interface for preferences storage
type Storage interface {
	Load() (*Preferences, error)
	Save(prefs *Preferences) error
}

// NewPreferences creates empty preferences
func NewPreferences() *Preferences {
	return &Preferences{
		StarredVenues: []string{},
	}
}

// Star adds a venue. Returns false if it was already starred.
func (p *Preferences) Star(venue string) bool {
	venue = strings.TrimSpace(venue)
	if venue == "" || p.IsStarred(venue) {
		return false
	}
	p.StarredVenues = append(p.StarredVenues, venue)
	return true
}

// Unstar removes a venue. Returns false if it was not starred.
func (p *Preferences) Unstar(venue string) bool {
	venue = strings.TrimSpace(venue)
	for i, v := range p.StarredVenues {
		if strings.EqualFold(v, venue) {
			p.StarredVenues = append(p.StarredVenues[:i], p.StarredVenues[i+1:]...)
			return true
		}
	}
	return false
}

// IsStarred checks a venue name, case-insensitive
func (p *Preferences) IsStarred(venue string) bool {
	venue = strings.TrimSpace(venue)
	for _, v := range p.StarredVenues {
		if strings.EqualFold(v, venue) {
			return true
		}
	}
	return false
}

// Starred returns the starred venues, sorted
func (p *Preferences) Starred() []string {
	starred := append([]string{}, p.StarredVenues...)
	sort.Strings(starred)
	return starred
}

// ToJSON marshals preferences to JSON
func (p *Preferences) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// FromJSON unmarshals preferences from JSON
func FromJSON(data []byte) (*Preferences, error) {
	prefs := NewPreferences()
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("unmarshaling preferences: %w", err)
	}
	if prefs.StarredVenues == nil {
		prefs.StarredVenues = []string{}
	}
	return prefs, nil
}

// FileStorage stores preferences in a JSON file
type FileStorage struct {
	path string
}

// NewFileStorage creates a FileStorage writing to path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads preferences, returning empty ones when the file does not exist yet
func (s *FileStorage) Load() (*Preferences, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewPreferences(), nil
		}
		return nil, fmt.Errorf("reading preferences: %w", err)
	}
	return FromJSON(data)
}

// Save writes preferences, creating the parent directory if needed
func (s *FileStorage) Save(prefs *Preferences) error {
	data, err := prefs.ToJSON()
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}
