// Package cache provides the SQLite render cache for sidenote.
//
// Rendering is deterministic for a given source, document id and set of
// render flags, so the cache stores the HTML and the sidenote inventory
// under a SHA3-256 key of those inputs. Re-running a batch over unchanged
// files then skips parsing entirely.
//
// The database is a single file opened through modernc.org/sqlite, which
// needs no cgo.
package cache
