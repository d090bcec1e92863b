// Package metrics tracks scrape and fetch activity with Prometheus collectors.
//
// Collectors live on a private registry so tests and multiple instances never
// collide. Counters track fetch outcomes, retries, new events and rejected
// candidates; gauges track events per venue; a histogram tracks scrape duration
// per venue. All methods are safe to call on a nil *Metrics, which records nothing.
//
// The CLI writes the registry to a node_exporter textfile after each run:
//
//	m := metrics.New()
//	f := fetch.New(pages, fetch.Options{Metrics: m})
//	...
//	m.WriteTextfile("/var/lib/node_exporter/musiclist.prom")
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "musiclist"

// Fetch outcomes
const (
	FetchNetwork = "network"
	FetchCache   = "cache"
	FetchError   = "error"
)

// Metrics holds the collectors for one process
type Metrics struct {
	registry *prometheus.Registry

	fetches        *prometheus.CounterVec
	fetchRetries   *prometheus.CounterVec
	scrapeDuration *prometheus.HistogramVec
	events         *prometheus.GaugeVec
	newEvents      *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	lastRun        prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.fetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetches_total",
		Help:      "Calendar page fetches by venue and result (network, cache, error)",
	}, []string{"venue", "result"})
	m.fetchRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_retries_total",
		Help:      "Fetch attempts retried after a failure",
	}, []string{"venue"})
	m.scrapeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scrape_duration_seconds",
		Help:      "Time spent scraping one venue",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"venue"})
	m.events = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "venue_events",
		Help:      "Upcoming events returned for a venue by the last run",
	}, []string{"venue"})
	m.newEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "new_events_total",
		Help:      "Events inserted into the store",
	}, []string{"venue"})
	m.rejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_candidates_total",
		Help:      "Parsed candidates dropped for missing date, artists or URL",
	}, []string{"venue"})
	m.lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last completed scrape run",
	})

	m.registry.MustRegister(
		m.fetches, m.fetchRetries, m.scrapeDuration,
		m.events, m.newEvents, m.rejected, m.lastRun,
	)
	return m
}

// Registry returns the registry holding every collector
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// FetchResult counts one fetch outcome
func (m *Metrics) FetchResult(venue, result string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(venue, result).Inc()
}

// FetchRetry counts one retried attempt
func (m *Metrics) FetchRetry(venue string) {
	if m == nil {
		return
	}
	m.fetchRetries.WithLabelValues(venue).Inc()
}

// ObserveScrape records how long a venue took
func (m *Metrics) ObserveScrape(venue string, d time.Duration) {
	if m == nil {
		return
	}
	m.scrapeDuration.WithLabelValues(venue).Observe(d.Seconds())
}

// SetEvents records the number of events returned for a venue
func (m *Metrics) SetEvents(venue string, n int) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(venue).Set(float64(n))
}

// AddNewEvents counts events inserted by reconcile
func (m *Metrics) AddNewEvents(venue string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.newEvents.WithLabelValues(venue).Add(float64(n))
}

// AddRejected counts candidates that failed validation
func (m *Metrics) AddRejected(venue string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rejected.WithLabelValues(venue).Add(float64(n))
}

// RunCompleted stamps the end of a scrape run
func (m *Metrics) RunCompleted(at time.Time) {
	if m == nil {
		return
	}
	m.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes every collector in the text exposition format, for the
// node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
