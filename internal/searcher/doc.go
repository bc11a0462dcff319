// Package searcher ranks indexed code chunks against a natural language
// query by cosine similarity over their embeddings. It reads immutable
// index snapshots published by the indexer and caches recent query
// results in a TTL-bounded LRU.
package searcher
