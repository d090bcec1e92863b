// Package notifier announces newly listed shows.
//
// A Tracker remembers which events it has already seen across scrape runs and
// returns only the ones that are new. A Notifier delivers them; WriterNotifier
// prints them, which is what watch mode uses.
package notifier
