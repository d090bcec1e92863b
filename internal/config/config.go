package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pfrederiksen/musiclist/internal/cache"
	"github.com/pfrederiksen/musiclist/internal/fetch"
)

const (
	envPrefix = "MUSICLIST_"

	DefaultDataDir     = "~/.local/share/musiclist"
	DefaultDBFile      = "musiclist.db"
	DefaultVenuesFile  = "venues.yaml"
	DefaultWorkers     = 1
	DefaultLogLevel    = "WARN"
	DefaultLogFormat   = "text"
)

// Config holds runtime settings
type Config struct {
	DataDir    string
	DBPath     string
	VenuesFile string

	// Freshness is how long a venue's stored events are trusted before re-scraping
	Freshness time.Duration
	Workers   int

	FetchTimeout  time.Duration
	MaxAttempts   int
	BaseDelay     time.Duration
	RatePerSecond float64
	UserAgent     string

	LogLevel  string
	LogFormat string
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		DataDir:      DefaultDataDir,
		Freshness:    cache.DefaultMaxAge,
		Workers:      DefaultWorkers,
		FetchTimeout: fetch.Timeout,
		MaxAttempts:  fetch.DefaultMaxAttempts,
		BaseDelay:    fetch.DefaultBaseDelay,
		UserAgent:    fetch.UserAgent,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// Load reads .env (if present) and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function, starting from Default
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(envPrefix + key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := get("DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := get("VENUES_FILE"); ok {
		cfg.VenuesFile = v
	}
	if v, ok := get("USER_AGENT"); ok {
		cfg.UserAgent = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"FRESHNESS", &cfg.Freshness},
		{"FETCH_TIMEOUT", &cfg.FetchTimeout},
		{"BASE_DELAY", &cfg.BaseDelay},
	}
	for _, d := range durations {
		v, ok := get(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid %s%s %q: must be a duration like 24h", envPrefix, d.key, v)
		}
		*d.dst = parsed
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"WORKERS", &cfg.Workers},
		{"MAX_ATTEMPTS", &cfg.MaxAttempts},
	}
	for _, n := range ints {
		v, ok := get(n.key)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid %s%s %q: must be a positive integer", envPrefix, n.key, v)
		}
		*n.dst = parsed
	}

	if v, ok := get("RATE_PER_SECOND"); ok {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid %sRATE_PER_SECOND %q", envPrefix, v)
		}
		cfg.RatePerSecond = parsed
	}

	return cfg, nil
}

// ResolveDataDir expands ~/ in the data directory and creates it
func (c *Config) ResolveDataDir() (string, error) {
	dir, err := expandHome(c.DataDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	c.DataDir = dir
	return dir, nil
}

// DatabasePath returns the SQLite path, defaulting to a file in the data directory
func (c *Config) DatabasePath() string {
	return c.inDataDir(c.DBPath, DefaultDBFile)
}

// VenuesPath returns the venue list path, defaulting to a file in the data directory
func (c *Config) VenuesPath() string {
	return c.inDataDir(c.VenuesFile, DefaultVenuesFile)
}

// CacheDir returns the page cache directory
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

func (c *Config) inDataDir(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if strings.HasPrefix(path, "~/") || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
