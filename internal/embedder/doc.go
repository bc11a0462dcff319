// Package embedder provides the embedding-provider contract and its
// implementations.
//
// The Embedder interface is the narrow consumed capability of the index:
// a batch of texts in, a batch of same-order vectors out. Providers may be
// remote, rate-limited, and fallible; every remote call runs under a
// per-call timeout with bounded exponential backoff (MaxRetries attempts,
// InitialBackoffMs base, BackoffMultiplier growth, MaxBackoffMs cap).
//
// Three providers exist:
//
//   - openai: github.com/sashabaranov/go-openai client, text-embedding-3-small
//   - jina: the Jina AI HTTP API, jina-embeddings-v3
//   - local: deterministic hash-derived unit vectors for offline use and tests
//
// NewFromEnv selects a provider from AUTOCTX_EMBEDDING_PROVIDER or from
// whichever API key is present, falling back to local. The dimension
// reported by a provider is fixed for the lifetime of an index; the store
// rejects (rebuilds) snapshots with a different dimension.
package embedder
