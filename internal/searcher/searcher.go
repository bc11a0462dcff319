package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/kettleby/autoctx/internal/config"
	"github.com/kettleby/autoctx/internal/embedder"
	"github.com/kettleby/autoctx/internal/index"
	"github.com/kettleby/autoctx/pkg/types"
)

// SnapshotProvider supplies the index snapshot a query runs against.
// The indexer satisfies this; snapshots are immutable, so a query sees a
// consistent index even while a reindex runs.
type SnapshotProvider interface {
	Snapshot() *index.Index
}

// cacheEntry is a cached result set with its expiration time.
type cacheEntry struct {
	results   []types.SearchResult
	expiresAt time.Time
}

// Searcher ranks index entries by cosine similarity to an embedded
// query. Results for recent queries are served from an LRU cache until
// they expire or a newer snapshot is published.
type Searcher struct {
	snapshots SnapshotProvider
	embedder  embedder.Embedder
	cfg       config.SearchConfig
	cache     *lru.Cache[[32]byte, *cacheEntry]
	ttl       time.Duration
	logger    *zap.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets a logger for query diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Searcher) { s.logger = l }
}

// New creates a searcher over the provider's snapshots.
func New(snapshots SnapshotProvider, emb embedder.Embedder, cfg config.SearchConfig, opts ...Option) *Searcher {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[[32]byte, *cacheEntry](size)
	if err != nil {
		// Only reachable with a non-positive size, which is clamped above.
		panic(fmt.Sprintf("create query cache: %v", err))
	}

	s := &Searcher{
		snapshots: snapshots,
		embedder:  emb,
		cfg:       cfg,
		cache:     cache,
		ttl:       time.Duration(cfg.CacheTTLSeconds) * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search embeds the query and returns the top limit entries by cosine
// similarity, best first. Ties are broken by path then start line. An
// empty query or an empty index yields an empty result set, not an
// error. A limit outside (0, MaxLimit] is replaced by the configured
// default or clamped to the maximum.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	start := time.Now()

	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	snapshot := s.snapshots.Snapshot()
	if query == "" || snapshot.Len() == 0 {
		return []types.SearchResult{}, nil
	}

	key := cacheKey(query, limit, snapshot)
	if entry, ok := s.cache.Get(key); ok && time.Now().Before(entry.expiresAt) {
		return entry.results, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := rank(snapshot, vector, limit)

	s.cache.Add(key, &cacheEntry{results: results, expiresAt: time.Now().Add(s.ttl)})

	if s.logger != nil {
		s.logger.Debug("search complete",
			zap.Int("candidates", snapshot.Len()),
			zap.Int("results", len(results)),
			zap.Duration("duration", time.Since(start)))
	}
	return results, nil
}

// rank scores every entry in the snapshot against the query vector and
// returns the top limit results in final order.
func rank(snapshot *index.Index, query []float32, limit int) []types.SearchResult {
	heap := newTopK(limit)
	snapshot.Each(func(entry *types.IndexEntry) {
		heap.offer(types.SearchResult{
			Chunk: entry.Chunk,
			Score: cosineSimilarity(query, entry.Vector),
		})
	})
	return heap.drain()
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either has zero norm. Dimension mismatches score 0 rather
// than panic; the index never stores mixed dimensions.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// resultLess is the final result ordering: score descending, then path
// and start line ascending. The top-k heap and any full sort must agree
// on this ordering exactly.
func resultLess(a, b types.SearchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Chunk.Path != b.Chunk.Path {
		return a.Chunk.Path < b.Chunk.Path
	}
	return a.Chunk.StartLine < b.Chunk.StartLine
}

// sortResults orders results by resultLess. Exposed for tests that
// compare heap output against a full sort.
func sortResults(results []types.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return resultLess(results[i], results[j])
	})
}

// cacheKey hashes the query, the limit, and the snapshot generation.
// Generations increase monotonically across publishes, so cached results
// go stale as soon as a reindex publishes a new snapshot and can never
// alias an older one.
func cacheKey(query string, limit int, snapshot *index.Index) [32]byte {
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(limit)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatUint(snapshot.Generation(), 10)))
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}
