// Package app wires configuration, storage, fetching and scraping into the
// operations the command line exposes: scraping, the calendar view, pinning,
// listing, starring venues and ICS export.
package app
