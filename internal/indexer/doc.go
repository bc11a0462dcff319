// Package indexer implements the incremental updater.
//
// One Reindex pass walks the project tree, diffs file fingerprints against
// the loaded index, and re-chunks and re-embeds only the delta. Embedding
// is the latency-dominant step, so cache misses are batched and embedded
// by a bounded errgroup pool. Everything else, from fingerprint diffing
// to applying results and persistence, runs in a single writer pass. The
// persisted snapshot is written once per pass, so an interrupted run loses
// at most one batch of work and the next run's fingerprint comparison
// picks up where it left off.
//
// Failure policy: unreadable files, parse failures, and permanently failed
// embedding batches are counted in the returned Summary and never abort
// the pass. Only cancellation, walk failures, and snapshot save failures
// surface as errors.
package indexer
