package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/musiclist/internal/cache"
	"github.com/pfrederiksen/musiclist/internal/logger"
	"github.com/pfrederiksen/musiclist/internal/metrics"
)

const (
	UserAgent          = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	Timeout            = 10 * time.Second
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second

	// maxBodySize caps how much of a calendar page is read
	maxBodySize = 10 << 20
)

// FetchError is returned once every attempt for a page has failed
type FetchError struct {
	Venue    string
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s for %s failed after %d attempts: %v", e.URL, e.Venue, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Options configures a Fetcher. Zero values select the defaults.
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	// MaxAge is the cache freshness window
	MaxAge time.Duration
	// RatePerSecond limits outgoing requests; 0 means unlimited
	RatePerSecond float64

	Client  *http.Client
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Fetcher retrieves pages, consulting the cache first
type Fetcher struct {
	client  *http.Client
	pages   *cache.FileCache
	limiter *rate.Limiter
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Fetcher. pages may be nil to disable caching.
func New(pages *cache.FileCache, opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseDelay < 0 {
		opts.BaseDelay = 0
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = cache.DefaultMaxAge
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
		}
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	return &Fetcher{
		client:  client,
		pages:   pages,
		limiter: limiter,
		opts:    opts,
		logger:  logger.Default(opts.Logger).With("component", "fetch"),
		metrics: opts.Metrics,
	}
}

// Fetch returns the page at url for venue, from the cache when fresh
func (f *Fetcher) Fetch(ctx context.Context, venue, url string) (string, error) {
	return f.fetch(ctx, venue, url, false)
}

// Refetch skips the cache read and always goes to the network. The result is
// still written to the cache.
func (f *Fetcher) Refetch(ctx context.Context, venue, url string) (string, error) {
	return f.fetch(ctx, venue, url, true)
}

func (f *Fetcher) fetch(ctx context.Context, venue, url string, bypass bool) (string, error) {
	if f.pages != nil && !bypass {
		if content, ok := f.pages.Get(venue, url, f.opts.MaxAge); ok {
			f.logger.Debug("cache hit", "venue", venue, "url", url)
			f.metrics.FetchResult(venue, metrics.FetchCache)
			return content, nil
		}
	}

	content, attempts, err := f.download(ctx, venue, url)
	if err != nil {
		f.metrics.FetchResult(venue, metrics.FetchError)
		return "", &FetchError{Venue: venue, URL: url, Attempts: attempts, Err: err}
	}
	f.metrics.FetchResult(venue, metrics.FetchNetwork)

	if f.pages != nil {
		if err := f.pages.Set(venue, url, content); err != nil {
			f.logger.Warn("cache write failed", "venue", venue, "url", url, "error", err)
		}
	}
	return content, nil
}

// download runs the GET with retries. Delays double from BaseDelay.
func (f *Fetcher) download(ctx context.Context, venue, url string) (string, int, error) {
	attempts := 0
	operation := func() (string, error) {
		attempts++
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return "", backoff.Permanent(err)
			}
		}
		return f.get(ctx, url)
	}

	notify := func(err error, next time.Duration) {
		f.metrics.FetchRetry(venue)
		f.logger.Warn("fetch failed, retrying",
			"venue", venue,
			"url", url,
			"attempt", attempts,
			"max_attempts", f.opts.MaxAttempts,
			"backoff", next,
			"error", err)
	}

	content, err := backoff.RetryNotifyWithData(operation, f.policy(ctx), notify)
	return content, attempts, err
}

// policy builds a deterministic doubling schedule allowing MaxAttempts tries in total
func (f *Fetcher) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.opts.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = f.opts.BaseDelay << f.opts.MaxAttempts
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.opts.MaxAttempts-1)), ctx)
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(body), nil
}
