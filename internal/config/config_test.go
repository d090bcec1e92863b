package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.DataDir != DefaultDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, DefaultDataDir)
	}
	if cfg.Freshness != 24*time.Hour {
		t.Errorf("Freshness = %v, want 24h", cfg.Freshness)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", cfg.BaseDelay)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.FetchTimeout)
	}
	if cfg.RatePerSecond != 0 {
		t.Errorf("RatePerSecond = %v, want 0", cfg.RatePerSecond)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	env := map[string]string{
		"MUSICLIST_DATA_DIR":        "/tmp/musiclist",
		"MUSICLIST_DB_PATH":         "/var/lib/musiclist.db",
		"MUSICLIST_VENUES_FILE":     "custom.yaml",
		"MUSICLIST_FRESHNESS":       "6h",
		"MUSICLIST_WORKERS":         "4",
		"MUSICLIST_FETCH_TIMEOUT":   "5s",
		"MUSICLIST_MAX_ATTEMPTS":    "5",
		"MUSICLIST_BASE_DELAY":      "250ms",
		"MUSICLIST_RATE_PER_SECOND": "2.5",
		"MUSICLIST_USER_AGENT":      "test-agent",
		"MUSICLIST_LOG_LEVEL":       "debug",
		"MUSICLIST_LOG_FORMAT":      "json",
	}

	cfg, err := FromEnv(lookupFrom(env))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.DataDir != "/tmp/musiclist" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.DatabasePath() != "/var/lib/musiclist.db" {
		t.Errorf("DatabasePath() = %q", cfg.DatabasePath())
	}
	if cfg.VenuesPath() != filepath.Join("/tmp/musiclist", "custom.yaml") {
		t.Errorf("VenuesPath() = %q", cfg.VenuesPath())
	}
	if cfg.Freshness != 6*time.Hour {
		t.Errorf("Freshness = %v", cfg.Freshness)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v", cfg.FetchTimeout)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d", cfg.MaxAttempts)
	}
	if cfg.BaseDelay != 250*time.Millisecond {
		t.Errorf("BaseDelay = %v", cfg.BaseDelay)
	}
	if cfg.RatePerSecond != 2.5 {
		t.Errorf("RatePerSecond = %v", cfg.RatePerSecond)
	}
	if cfg.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("log settings = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad duration", "MUSICLIST_FRESHNESS", "tomorrow"},
		{"negative duration", "MUSICLIST_BASE_DELAY", "-1s"},
		{"zero workers", "MUSICLIST_WORKERS", "0"},
		{"non-numeric attempts", "MUSICLIST_MAX_ATTEMPTS", "three"},
		{"negative rate", "MUSICLIST_RATE_PER_SECOND", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(map[string]string{tt.key: tt.val}))
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q should name %s", err, tt.key)
			}
		})
	}
}

func TestFromEnvBlankIgnored(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{"MUSICLIST_WORKERS": "  "}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want default", cfg.Workers)
	}
}

func TestResolveDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	cfg := Default()
	cfg.DataDir = dir

	got, err := cfg.ResolveDataDir()
	if err != nil {
		t.Fatalf("ResolveDataDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ResolveDataDir() = %q, want %q", got, dir)
	}
	if cfg.DatabasePath() != filepath.Join(dir, DefaultDBFile) {
		t.Errorf("DatabasePath() = %q", cfg.DatabasePath())
	}
	if cfg.CacheDir() != filepath.Join(dir, "cache") {
		t.Errorf("CacheDir() = %q", cfg.CacheDir())
	}
}
