// Package scraper runs the per-venue scrape pipeline and merges the results.
//
// For each enabled venue the orchestrator upserts the venue, decides whether its
// stored events are fresh enough to reuse, and otherwise fetches the calendar
// page, parses it with the venue's parser and reconciles the candidates into the
// store. A venue whose scrape fails or yields nothing falls back to the events
// already stored for it. One venue failing never aborts the run; the error is
// logged and reported in Result.Failures.
//
// Venues are processed by a bounded worker pool. With one worker (the default)
// venues are scraped in list order.
package scraper
