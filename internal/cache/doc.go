// Package cache provides a JSON-file page cache for fetched venue calendars.
//
// Each (venue, URL) pair is stored as its own file under the cache directory,
// named by the SHA1 of "venue|url", holding the raw page content and the time it
// was fetched. Entries older than the caller's freshness window are treated as
// missing. The default location is ~/.local/share/musiclist/cache/.
package cache
