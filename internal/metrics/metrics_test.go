package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.FetchResult("The Warfield", FetchNetwork)
	m.FetchResult("The Warfield", FetchCache)
	m.FetchResult("The Warfield", FetchCache)
	m.FetchRetry("The Warfield")
	m.AddNewEvents("The Warfield", 3)
	m.AddNewEvents("The Warfield", 0)
	m.AddRejected("The Warfield", 2)
	m.SetEvents("The Warfield", 7)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"network fetches", testutil.ToFloat64(m.fetches.WithLabelValues("The Warfield", FetchNetwork)), 1},
		{"cache fetches", testutil.ToFloat64(m.fetches.WithLabelValues("The Warfield", FetchCache)), 2},
		{"retries", testutil.ToFloat64(m.fetchRetries.WithLabelValues("The Warfield")), 1},
		{"new events", testutil.ToFloat64(m.newEvents.WithLabelValues("The Warfield")), 3},
		{"rejected", testutil.ToFloat64(m.rejected.WithLabelValues("The Warfield")), 2},
		{"events gauge", testutil.ToFloat64(m.events.WithLabelValues("The Warfield")), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestMetrics_ScrapeDuration(t *testing.T) {
	m := New()
	m.ObserveScrape("Brick & Mortar", 1500*time.Millisecond)

	if n := testutil.CollectAndCount(m.scrapeDuration); n != 1 {
		t.Errorf("expected 1 histogram series, got %d", n)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	// none of these may panic
	m.FetchResult("v", FetchError)
	m.FetchRetry("v")
	m.ObserveScrape("v", time.Second)
	m.SetEvents("v", 1)
	m.AddNewEvents("v", 1)
	m.AddRejected("v", 1)
	m.RunCompleted(time.Now())

	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile on nil = %v", err)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.FetchResult("Neck of the Woods", FetchNetwork)
	m.RunCompleted(time.Unix(1781000000, 0))

	path := filepath.Join(t.TempDir(), "musiclist.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`musiclist_fetches_total{result="network",venue="Neck of the Woods"} 1`,
		`musiclist_last_run_timestamp_seconds 1.781e+09`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}
