package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kettleby/autoctx/internal/chunker"
	"github.com/kettleby/autoctx/internal/config"
	"github.com/kettleby/autoctx/internal/embedder"
	"github.com/kettleby/autoctx/internal/fingerprint"
	"github.com/kettleby/autoctx/internal/index"
	"github.com/kettleby/autoctx/pkg/types"
)

// ErrReindexInProgress is returned when a reindex is already running for
// this indexer.
var ErrReindexInProgress = errors.New("reindex already in progress")

// batchTimeout bounds one embedding batch call, including its retries.
const batchTimeout = 2 * time.Minute

// Indexer reconciles the persisted index with the current state of the
// project tree: chunk -> fingerprint -> embed (cache miss only) -> store.
type Indexer struct {
	root     string
	cfg      *config.Config
	store    *index.Store
	cache    *index.Cache
	embedder embedder.Embedder
	chunker  *chunker.Chunker
	walker   *Walker
	logger   *zap.Logger

	lock    ReindexLock
	current atomic.Pointer[index.Index]
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a logger for progress and failure diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// New creates an indexer for the project at root, loading the persisted
// index and embedding cache. A corrupt or dimension-mismatched snapshot
// loads as empty and is rebuilt on the first Reindex.
func New(root string, cfg *config.Config, store *index.Store, emb embedder.Embedder, opts ...Option) *Indexer {
	idx := &Indexer{
		root:     root,
		cfg:      cfg,
		store:    store,
		embedder: emb,
		walker:   NewWalker(cfg.Extensions, cfg.Ignore),
	}
	for _, opt := range opts {
		opt(idx)
	}

	idx.chunker = chunker.New(chunker.Config{
		MinLines:      cfg.Chunker.MinLines,
		WindowLines:   cfg.Chunker.WindowLines,
		WindowOverlap: cfg.Chunker.WindowOverlap,
	}, chunker.WithLogger(idx.logger))

	idx.cache = store.LoadCache(emb.Dimension())
	idx.current.Store(store.Load(emb.Dimension()))
	return idx
}

// Root returns the project root this indexer serves.
func (idx *Indexer) Root() string {
	return idx.root
}

// Snapshot returns the current published index. The returned value is
// immutable: a concurrent Reindex swaps in a fresh index rather than
// mutating this one, so searches observe either the state before the pass
// or after it, never a partial mix.
func (idx *Indexer) Snapshot() *index.Index {
	return idx.current.Load()
}

// fileJob is one changed file awaiting embedding and apply.
type fileJob struct {
	path   string
	fp     types.Fingerprint
	chunks []types.Chunk
	update bool // file already had entries
}

// Reindex walks the project tree and reconciles the index with it,
// re-embedding only chunks whose content hash misses the cache. The
// persisted snapshot is written once at the end of the pass. Per-file
// failures are reported in the summary, never as a hard error.
func (idx *Indexer) Reindex(ctx context.Context) (*types.Summary, error) {
	return idx.reindex(ctx, false)
}

// Rebuild reindexes every file regardless of recorded fingerprints.
// Embeddings still come from the cache where content is unchanged, so a
// rebuild is cheap unless the cache was lost too.
func (idx *Indexer) Rebuild(ctx context.Context) (*types.Summary, error) {
	return idx.reindex(ctx, true)
}

func (idx *Indexer) reindex(ctx context.Context, force bool) (*types.Summary, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrReindexInProgress
	}
	defer idx.lock.Release()

	start := time.Now()
	summary := &types.Summary{}

	files, err := idx.walker.Discover(idx.root)
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}

	working := idx.Snapshot().Clone()
	dirty := false

	onDisk := make(map[string]bool, len(files))
	var jobs []*fileJob

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		onDisk[rel] = true

		content, fp, err := fingerprint.File(filepath.Join(idx.root, rel))
		if err != nil {
			// Unreadable files are excluded from the index, not fatal.
			if working.RemoveFile(rel) > 0 {
				dirty = true
			}
			summary.AddError(rel, err)
			idx.warn("skipping unreadable file", rel, err)
			continue
		}

		prev, existed := working.FingerprintFor(rel)
		if !force && existed && prev.Equal(fp) {
			summary.Unchanged++
			continue
		}

		chunks := idx.chunker.ChunkFile(rel, content)
		if len(chunks) == 0 {
			// Empty file: drop any stale entries.
			if working.RemoveFile(rel) > 0 {
				dirty = true
				summary.Updated++
			} else {
				summary.Unchanged++
			}
			continue
		}

		jobs = append(jobs, &fileJob{path: rel, fp: fp, chunks: chunks, update: existed})
	}

	for _, path := range working.Paths() {
		if !onDisk[path] {
			working.RemoveFile(path)
			summary.Removed++
			dirty = true
		}
	}

	embedded, failedHashes, err := idx.embedMisses(ctx, jobs)
	if err != nil {
		return nil, err
	}

	// Single-writer apply: exactly one pass mutates the working index,
	// each file replaced as a unit.
	for _, job := range jobs {
		entries := make([]*types.IndexEntry, 0, len(job.chunks))
		skipped := 0
		for i := range job.chunks {
			chunk := job.chunks[i]
			vec, ok := idx.cache.Get(chunk.ContentHash)
			if !ok {
				vec, ok = embedded[chunk.ContentHash]
				if !ok {
					skipped++
					continue
				}
				idx.cache.Put(chunk.ContentHash, vec)
			}
			entries = append(entries, &types.IndexEntry{Chunk: chunk, Vector: vec, File: job.fp})
		}

		if len(entries) == 0 {
			working.RemoveFile(job.path)
			summary.AddError(job.path, fmt.Errorf("all %d chunks failed to embed: %w", len(job.chunks), firstError(job, failedHashes)))
			dirty = true
			continue
		}
		if skipped > 0 {
			// Keep what embedded, but record the fingerprint as partial
			// so the next pass retries the missing chunks, and count the
			// file as failed rather than added.
			for _, e := range entries {
				e.File.Partial = true
			}
			working.ReplaceFile(job.path, entries)
			summary.AddError(job.path, fmt.Errorf("%d of %d chunks failed to embed: %w", skipped, len(job.chunks), firstError(job, failedHashes)))
			dirty = true
			continue
		}

		working.ReplaceFile(job.path, entries)
		if job.update {
			summary.Updated++
		} else {
			summary.Added++
		}
		dirty = true
	}

	if dirty {
		if err := idx.store.Save(working); err != nil {
			return nil, fmt.Errorf("save index: %w", err)
		}
		idx.current.Store(working)
	}
	if idx.cache.Dirty() {
		if err := idx.store.SaveCache(idx.cache); err != nil {
			// Losing cache additions only costs re-embedding later.
			idx.warn("failed to save embedding cache", idx.store.CachePath(), err)
		}
	}

	summary.Duration = time.Since(start)
	if idx.logger != nil {
		idx.logger.Info("reindex complete",
			zap.String("root", idx.root),
			zap.Int("added", summary.Added),
			zap.Int("updated", summary.Updated),
			zap.Int("removed", summary.Removed),
			zap.Int("unchanged", summary.Unchanged),
			zap.Int("failed", summary.Failed),
			zap.Duration("duration", summary.Duration))
	}
	return summary, nil
}

// embedMisses batches every cache-missing content hash across jobs and
// embeds the batches concurrently. Batch failures are recorded per hash,
// not propagated: a partial index is preferred to no index.
func (idx *Indexer) embedMisses(ctx context.Context, jobs []*fileJob) (map[string][]float32, map[string]error, error) {
	need := make(map[string]string) // content hash -> text
	for _, job := range jobs {
		for i := range job.chunks {
			chunk := job.chunks[i]
			if _, ok := need[chunk.ContentHash]; ok {
				continue
			}
			if _, ok := idx.cache.Get(chunk.ContentHash); ok {
				continue
			}
			need[chunk.ContentHash] = chunk.Content
		}
	}

	embedded := make(map[string][]float32, len(need))
	failed := make(map[string]error)
	if len(need) == 0 {
		return embedded, failed, nil
	}

	hashes := make([]string, 0, len(need))
	for hash := range need {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	batchSize := idx.cfg.Indexer.BatchSize
	if batchSize > embedder.MaxBatchSize {
		batchSize = embedder.MaxBatchSize
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.cfg.Indexer.Workers)

	for start := 0; start < len(hashes); start += batchSize {
		end := start + batchSize
		if end > len(hashes) {
			end = len(hashes)
		}
		batch := hashes[start:end]

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, hash := range batch {
				texts[i] = need[hash]
			}

			bctx, cancel := context.WithTimeout(gctx, batchTimeout)
			defer cancel()

			vectors, err := idx.embedder.EmbedBatch(bctx, texts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				for _, hash := range batch {
					failed[hash] = err
				}
				idx.warn("embedding batch failed, chunks skipped", idx.root, err)
				return nil
			}
			for i, hash := range batch {
				embedded[hash] = vectors[i]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return embedded, failed, nil
}

// firstError returns the recorded embedding error for any of the job's
// chunk hashes, for summary reporting.
func firstError(job *fileJob, failed map[string]error) error {
	for i := range job.chunks {
		if err, ok := failed[job.chunks[i].ContentHash]; ok {
			return err
		}
	}
	return errors.New("embedding unavailable")
}

func (idx *Indexer) warn(msg, path string, err error) {
	if idx.logger != nil {
		idx.logger.Warn(msg, zap.String("path", path), zap.Error(err))
	}
}
