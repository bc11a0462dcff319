package index

import (
	"sort"

	"github.com/kettleby/autoctx/pkg/types"
)

// CurrentFormatVersion tags the persisted snapshot format. A loaded
// snapshot with a different version is discarded, forcing a full rebuild.
const CurrentFormatVersion = 1

// Index is the in-memory collection of index entries, keyed by
// (path, start_line, end_line). No two entries share a key, and all
// entries for one path carry the same file fingerprint.
//
// An Index published to searchers is immutable: the updater mutates a
// Clone and atomically swaps the published pointer. Entry pointers are
// shared between clones because entries are superseded, never mutated.
type Index struct {
	Version   int
	Dimension int

	// generation distinguishes this snapshot from every other one
	// derived from the same lineage. Clone bumps it, so each published
	// snapshot carries a unique, monotonically increasing value. Not
	// persisted; it only identifies in-memory snapshots.
	generation uint64

	entries map[types.EntryKey]*types.IndexEntry
}

// New creates an empty index for the given embedding dimension.
func New(dimension int) *Index {
	return &Index{
		Version:   CurrentFormatVersion,
		Dimension: dimension,
		entries:   make(map[types.EntryKey]*types.IndexEntry),
	}
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Get returns the entry for key, if present.
func (ix *Index) Get(key types.EntryKey) (*types.IndexEntry, bool) {
	e, ok := ix.entries[key]
	return e, ok
}

// Each calls fn for every entry in unspecified order.
func (ix *Index) Each(fn func(*types.IndexEntry)) {
	for _, e := range ix.entries {
		fn(e)
	}
}

// EntriesFor returns the entries owned by path, sorted by start line.
func (ix *Index) EntriesFor(path string) []*types.IndexEntry {
	var out []*types.IndexEntry
	for _, e := range ix.entries {
		if e.Chunk.Path == path {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// FingerprintFor returns the file fingerprint recorded against path.
// All of a path's entries share one fingerprint by construction.
func (ix *Index) FingerprintFor(path string) (types.Fingerprint, bool) {
	for _, e := range ix.entries {
		if e.Chunk.Path == path {
			return e.File, true
		}
	}
	return types.Fingerprint{}, false
}

// Paths returns the sorted set of paths with at least one entry.
func (ix *Index) Paths() []string {
	seen := make(map[string]bool)
	for _, e := range ix.entries {
		seen[e.Chunk.Path] = true
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ReplaceFile replaces all entries for path as a unit: old entries are
// removed and the new ones inserted in one mutation.
func (ix *Index) ReplaceFile(path string, entries []*types.IndexEntry) {
	ix.RemoveFile(path)
	for _, e := range entries {
		ix.entries[e.Key()] = e
	}
}

// RemoveFile removes every entry owned by path and returns how many were
// removed.
func (ix *Index) RemoveFile(path string) int {
	removed := 0
	for key, e := range ix.entries {
		if e.Chunk.Path == path {
			delete(ix.entries, key)
			removed++
		}
	}
	return removed
}

// Clone returns a copy that can be mutated without affecting ix. Entry
// values are shared; only the key map is copied. The clone's generation
// is one past ix's, so a clone published after a reindex is
// distinguishable from every snapshot before it.
func (ix *Index) Clone() *Index {
	clone := New(ix.Dimension)
	clone.Version = ix.Version
	clone.generation = ix.generation + 1
	for key, e := range ix.entries {
		clone.entries[key] = e
	}
	return clone
}

// Generation returns the snapshot's generation number.
func (ix *Index) Generation() uint64 {
	return ix.generation
}

// SortedEntries returns all entries ordered by key. This is the
// persistence order: identical index contents always serialize to
// identical bytes.
func (ix *Index) SortedEntries() []*types.IndexEntry {
	out := make([]*types.IndexEntry, 0, len(ix.entries))
	for _, e := range ix.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}
