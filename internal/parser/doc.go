// Package parser turns venue calendar pages into candidate events.
//
// Every venue publishes its calendar with its own markup, so each venue gets a
// bespoke Parser registered under a capability name (brick_mortar, neck_woods,
// warfield). The parsers share a set of free normalization functions for times,
// month names, artist lists and prices, but locate and read their event containers
// independently.
//
// Parsing is best-effort: a container that cannot be read is skipped, and a
// candidate without a date, an artist or a URL is never emitted.
package parser
