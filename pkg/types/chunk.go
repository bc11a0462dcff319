package types

import "errors"

// Chunk is a contiguous, independently embeddable span of one source file.
// Lines are 1-based and inclusive. Chunks are immutable once created; when
// the underlying file changes they are superseded, never mutated.
type Chunk struct {
	// Path is the file path relative to the project root. It is the stable
	// identifier of the chunk's origin across reindexes.
	Path string

	// Location within the file.
	StartLine int
	EndLine   int

	// Content is the raw text of the span.
	Content string

	// ContentHash is the hex SHA-256 of Content, used as the cache and
	// dedup key. Identical content in two files shares one hash.
	ContentHash string
}

// Key returns the identity of the chunk within an index.
func (c *Chunk) Key() EntryKey {
	return EntryKey{Path: c.Path, StartLine: c.StartLine, EndLine: c.EndLine}
}

// LineCount returns the number of lines the chunk spans.
func (c *Chunk) LineCount() int {
	return c.EndLine - c.StartLine + 1
}

// TokenEstimate estimates token count using the chars/4 heuristic.
func (c *Chunk) TokenEstimate() int {
	return len(c.Content) / 4
}

// Validate checks chunk invariants.
func (c *Chunk) Validate() error {
	if c.Path == "" {
		return errors.New("chunk path cannot be empty")
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}
	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}
	if c.ContentHash == "" {
		return errors.New("content hash must be computed")
	}
	return nil
}
