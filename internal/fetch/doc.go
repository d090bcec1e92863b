// Package fetch downloads venue calendar pages through the page cache.
//
// A fresh cached copy is returned without touching the network. Otherwise the page
// is requested with a browser-like User-Agent and retried on failure with a
// doubling delay. Non-2xx responses count as failures. Successful downloads are
// written back to the cache.
package fetch
