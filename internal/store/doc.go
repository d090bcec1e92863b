// Package store persists venues and events in SQLite through bun.
//
// Events are unique per (venue, date, artists, url). Reconcile merges a fresh
// scrape into the table: known events get their time and cost refreshed, unknown
// events are inserted, and the pinned flag of a stored event is never touched by
// a scrape. Writes are serialized and each reconcile runs in one transaction.
package store
