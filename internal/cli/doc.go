// Package cli implements the command-line interface for musiclist.
//
// The cli package provides the Cobra-based CLI: the calendar view (the default
// command), full scrapes, venue starring, event pinning, ICS export and a watch
// mode that re-scrapes on an interval. Output is text or JSON. Configuration comes
// from the environment (see package config) and flags override it.
package cli
