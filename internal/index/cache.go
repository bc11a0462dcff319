package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"sync"
)

// Cache maps content hash to embedding vector. It guarantees at most one
// embedding computation per distinct content hash across the index's
// lifetime: identical content in two files shares one entry. Entries are
// never evicted; growth is bounded by the number of distinct hashes seen.
type Cache struct {
	mu        sync.RWMutex
	dimension int
	vectors   map[string][]float32
	dirty     bool
}

// NewCache creates an empty cache for the given embedding dimension.
func NewCache(dimension int) *Cache {
	return &Cache{
		dimension: dimension,
		vectors:   make(map[string][]float32),
	}
}

// Get returns a copy of the cached vector for hash.
func (c *Cache) Get(hash string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.vectors[hash]
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Put stores a copy of vec under hash. Vectors of the wrong dimension are
// ignored rather than poisoning the cache.
func (c *Cache) Put(hash string, vec []float32) {
	if hash == "" || len(vec) != c.dimension {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.vectors[hash]; exists {
		return
	}
	stored := make([]float32, len(vec))
	copy(stored, vec)
	c.vectors[hash] = stored
	c.dirty = true
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

// Dimension returns the cache's embedding dimension.
func (c *Cache) Dimension() int {
	return c.dimension
}

// Dirty reports whether the cache has unsaved additions.
func (c *Cache) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// cacheSnapshot is the persisted embedding-cache format.
type cacheSnapshot struct {
	Version   int
	Dimension int
	Vectors   map[string][]float32
}

// LoadCache reads the persisted embedding cache. Like Load, it never fails
// the caller: corrupt or incompatible files yield an empty cache.
func (s *Store) LoadCache(dimension int) *Cache {
	path := s.CachePath()

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn("embedding cache unreadable, starting empty", path, err)
		}
		return NewCache(dimension)
	}
	defer func() { _ = f.Close() }()

	var snap cacheSnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		s.warn("embedding cache corrupt, starting empty", path, err)
		return NewCache(dimension)
	}

	if snap.Version != CurrentFormatVersion || snap.Dimension != dimension {
		s.warn("embedding cache incompatible, starting empty", path,
			fmt.Errorf("cache version %d dimension %d, want version %d dimension %d",
				snap.Version, snap.Dimension, CurrentFormatVersion, dimension))
		return NewCache(dimension)
	}

	cache := NewCache(dimension)
	for hash, vec := range snap.Vectors {
		if len(vec) == dimension {
			cache.vectors[hash] = vec
		}
	}
	return cache
}

// SaveCache persists the embedding cache atomically and clears the dirty
// flag on success.
func (s *Store) SaveCache(c *Cache) error {
	c.mu.RLock()
	snap := cacheSnapshot{
		Version:   CurrentFormatVersion,
		Dimension: c.dimension,
		Vectors:   make(map[string][]float32, len(c.vectors)),
	}
	for hash, vec := range c.vectors {
		snap.Vectors[hash] = vec
	}
	c.mu.RUnlock()

	err := s.writeAtomic(s.CachePath(), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(&snap)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return nil
}
