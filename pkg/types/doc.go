// Package types defines the shared value types of the semantic index:
// chunks, fingerprints, index entries, search results, and reindex
// summaries.
//
// These types are deliberately free of behavior beyond validation and
// identity. The index owns IndexEntry values; search results reference
// chunks by value and are never persisted.
package types
