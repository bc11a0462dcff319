// Package index owns the persisted state of the semantic search index: the
// Index value (chunk + vector + fingerprint entries), the Store that
// snapshots it to disk, and the append-only embedding Cache.
//
// Persistence is gob over a version- and dimension-tagged snapshot whose
// entries are sorted by key, so identical index contents always produce
// identical files. Saves go to a temp file and are renamed into place;
// loads of missing, corrupt, or incompatible snapshots return empty values
// and let the next reindex rebuild from scratch. Nothing in this package
// talks to the network or spawns goroutines; callers load at operation
// start and save at operation end.
package index
