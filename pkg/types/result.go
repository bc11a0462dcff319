package types

import "time"

// SearchResult is a single ranked hit: a chunk plus its cosine similarity
// score (higher is more similar). Produced transiently per query, never
// persisted.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Validate checks if the search result is valid.
func (sr *SearchResult) Validate() error {
	if err := sr.Chunk.Validate(); err != nil {
		return err
	}
	if sr.Score < -1.0001 || sr.Score > 1.0001 {
		return ErrInvalidScore
	}
	return nil
}

// Summary reports the outcome of one reindex pass. Per-file failures are
// counted and described rather than aborting the batch.
type Summary struct {
	Added     int
	Updated   int
	Removed   int
	Unchanged int
	Failed    int

	// Errors holds per-file failure descriptions, capped by the caller
	// when surfaced to users.
	Errors []string

	Duration time.Duration
}

// Total returns the number of files visited during the pass.
func (s *Summary) Total() int {
	return s.Added + s.Updated + s.Removed + s.Unchanged + s.Failed
}

// AddError records a per-file failure.
func (s *Summary) AddError(path string, err error) {
	s.Failed++
	s.Errors = append(s.Errors, path+": "+err.Error())
}
