// Package chunker splits source files into retrievable chunks.
//
// Two strategies exist behind the Splitter interface: structural splitting
// at top-level Go declaration boundaries (doc comments stay attached to
// their declaration, consecutive small declarations are merged until a soft
// minimum), and a fixed-size overlapping window fallback for files that
// cannot be parsed. SelectStrategy picks the strategy from the file
// extension and parse success alone.
//
// Whatever the strategy, the emitted chunks cover the whole file in order,
// carry 1-based inclusive line spans, and are hashed for embedding-cache
// lookups.
package chunker
