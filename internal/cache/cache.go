package cache

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultMaxAge is the freshness window used when none is configured
const DefaultMaxAge = 24 * time.Hour

// Entry is one cached page
type Entry struct {
	Venue     string    `json:"venue"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fresh reports whether the entry is younger than maxAge at now
func (e *Entry) Fresh(maxAge time.Duration, now time.Time) bool {
	return now.Sub(e.FetchedAt) < maxAge
}

// FileCache stores pages as JSON files. It is safe for concurrent use.
type FileCache struct {
	mu  sync.RWMutex
	dir string
	now func() time.Time
}

// New creates a FileCache rooted at dir, creating it if needed
func New(dir string) (*FileCache, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &FileCache{
		dir: dir,
		now: time.Now,
	}, nil
}

// Dir returns the cache directory
func (c *FileCache) Dir() string {
	return c.dir
}

// SetClock overrides the clock used for timestamps and freshness checks
func (c *FileCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns the cached content for (venue, url) if it is younger than maxAge.
// Returns false if not found, expired or unreadable.
func (c *FileCache) Get(venue, url string, maxAge time.Duration) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, err := c.read(c.path(venue, url))
	if err != nil {
		return "", false
	}
	if entry.Venue != venue || entry.URL != url {
		return "", false
	}
	if !entry.Fresh(maxAge, c.now()) {
		return "", false
	}
	return entry.Content, true
}

// Set stores content for (venue, url) stamped with the current time
func (c *FileCache) Set(venue, url, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		Venue:     venue,
		URL:       url,
		Content:   content,
		FetchedAt: c.now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	// Write to a temp file first so readers never see a partial entry
	path := c.path(venue, url)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Purge removes entries older than maxAge along with unreadable files.
// Returns the number of files removed.
func (c *FileCache) Purge(maxAge time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths, err := c.entries()
	if err != nil {
		return 0, err
	}

	removed := 0
	now := c.now()
	for _, path := range paths {
		entry, err := c.read(path)
		if err == nil && entry.Fresh(maxAge, now) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("removing cache entry: %w", err)
		}
		removed++
	}
	return removed, nil
}

// Len returns the number of cached entries
func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	paths, err := c.entries()
	if err != nil {
		return 0
	}
	return len(paths)
}

func (c *FileCache) entries() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}
	return paths, nil
}

func (c *FileCache) read(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parsing cache entry: %w", err)
	}
	return &entry, nil
}

// path returns the file for (venue, url)
func (c *FileCache) path(venue, url string) string {
	return filepath.Join(c.dir, Key(venue, url)+".json")
}

// Key generates the cache key for a (venue, url) pair. The NUL separator cannot
// occur in either field, so distinct pairs never share a file.
func Key(venue, url string) string {
	h := sha1.New()
	h.Write([]byte(venue + "\x00" + url))
	return fmt.Sprintf("%x", h.Sum(nil))
}
