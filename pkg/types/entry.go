package types

import (
	"errors"
	"fmt"
	"time"
)

// Fingerprint identifies the state of a file at indexing time. Change
// detection compares Hash only; ModTime and Size are recorded for
// diagnostics and status reporting.
type Fingerprint struct {
	Hash    string
	ModTime time.Time
	Size    int64

	// Partial marks a fingerprint recorded while some of the file's
	// chunks were missing embeddings. A partial fingerprint never equals
	// another, so the file is reconciled again on the next pass.
	Partial bool
}

// Equal reports whether two fingerprints denote identical, fully indexed
// content.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.Partial || other.Partial {
		return false
	}
	return f.Hash == other.Hash
}

// EntryKey uniquely identifies an index entry. A path owns zero or more
// entries, one per chunk.
type EntryKey struct {
	Path      string
	StartLine int
	EndLine   int
}

// Less orders keys by (path, start_line, end_line) ascending. This is the
// tie-break order for equal search scores and the persistence sort order.
func (k EntryKey) Less(other EntryKey) bool {
	if k.Path != other.Path {
		return k.Path < other.Path
	}
	if k.StartLine != other.StartLine {
		return k.StartLine < other.StartLine
	}
	return k.EndLine < other.EndLine
}

func (k EntryKey) String() string {
	return fmt.Sprintf("%s:%d-%d", k.Path, k.StartLine, k.EndLine)
}

// IndexEntry is the authoritative persisted unit: a chunk, its embedding
// vector, and the file-level fingerprint at indexing time. The vector is
// owned exclusively by the entry.
type IndexEntry struct {
	Chunk  Chunk
	Vector []float32
	File   Fingerprint
}

// Key returns the entry's identity within the index.
func (e *IndexEntry) Key() EntryKey {
	return e.Chunk.Key()
}

// Validate checks entry invariants against the index dimension.
func (e *IndexEntry) Validate(dimension int) error {
	if err := e.Chunk.Validate(); err != nil {
		return err
	}
	if len(e.Vector) == 0 {
		return errors.New("entry vector cannot be empty")
	}
	if dimension > 0 && len(e.Vector) != dimension {
		return fmt.Errorf("entry vector dimension %d does not match index dimension %d", len(e.Vector), dimension)
	}
	if e.File.Hash == "" {
		return errors.New("entry file fingerprint is required")
	}
	return nil
}
