package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kettleby/autoctx/pkg/types"
)

const (
	// StateDirName is the project-local state directory.
	StateDirName = ".autoctx"

	indexFileName = "index.gob"
	cacheFileName = "cache.gob"
)

// Store persists index and cache snapshots under a state directory.
//
// Saves are atomic with respect to crashes: the snapshot is written to a
// temporary file in the same directory and renamed into place, so a crash
// mid-write never corrupts the previously valid snapshot. Loads never fail
// the caller: a missing, corrupt, version-mismatched, or
// dimension-mismatched file yields an empty value, which triggers a full
// rebuild on the next reindex.
type Store struct {
	dir    string
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a logger for load/save diagnostics.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store rooted at the project's state directory.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{dir: filepath.Join(root, StateDirName)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the state directory path.
func (s *Store) Dir() string {
	return s.dir
}

// IndexPath returns the path of the persisted index snapshot.
func (s *Store) IndexPath() string {
	return filepath.Join(s.dir, indexFileName)
}

// CachePath returns the path of the persisted embedding cache.
func (s *Store) CachePath() string {
	return filepath.Join(s.dir, cacheFileName)
}

// indexSnapshot is the persisted index format: version and dimension
// header plus entries sorted by key.
type indexSnapshot struct {
	Version   int
	Dimension int
	Entries   []types.IndexEntry
}

// Load reads the persisted index. dimension is the active provider's
// embedding dimension; a snapshot with any other dimension is stale and is
// discarded rather than mixed with new vectors.
func (s *Store) Load(dimension int) *Index {
	path := s.IndexPath()

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn("index snapshot unreadable, starting empty", path, err)
		}
		return New(dimension)
	}
	defer func() { _ = f.Close() }()

	var snap indexSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		s.warn("index snapshot corrupt, starting empty", path, err)
		return New(dimension)
	}

	if snap.Version != CurrentFormatVersion {
		s.warn("index snapshot version mismatch, starting empty", path,
			fmt.Errorf("snapshot version %d, current %d", snap.Version, CurrentFormatVersion))
		return New(dimension)
	}
	if snap.Dimension != dimension {
		s.warn("index snapshot dimension mismatch, full rebuild required", path,
			fmt.Errorf("snapshot dimension %d, provider dimension %d", snap.Dimension, dimension))
		return New(dimension)
	}

	ix := New(dimension)
	for i := range snap.Entries {
		e := snap.Entries[i]
		if err := e.Validate(dimension); err != nil {
			s.warn("skipping invalid index entry", e.Key().String(), err)
			continue
		}
		ix.entries[e.Key()] = &e
	}
	return ix
}

// Save persists the index atomically.
func (s *Store) Save(ix *Index) error {
	snap := indexSnapshot{
		Version:   ix.Version,
		Dimension: ix.Dimension,
		Entries:   make([]types.IndexEntry, 0, ix.Len()),
	}
	for _, e := range ix.SortedEntries() {
		snap.Entries = append(snap.Entries, *e)
	}

	return s.writeAtomic(s.IndexPath(), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(&snap)
	})
}

// writeAtomic writes via a temp file in the state dir and renames into
// place on success.
func (s *Store) writeAtomic(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}

func (s *Store) warn(msg, path string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, zap.String("path", path), zap.Error(err))
	}
}
