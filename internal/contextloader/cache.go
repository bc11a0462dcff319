package contextloader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// CacheFileName is the usage-tracking file inside the state directory.
const CacheFileName = "context_cache.json"

// maxRecentFiles caps the recency list.
const maxRecentFiles = 20

// Cache records file usage between sessions: a most-recent-first list,
// per-path access counts, and the last query and task seen.
type Cache struct {
	RecentFiles []string       `json:"recent_files"`
	HotFiles    map[string]int `json:"hot_files"`
	LastQuery   string         `json:"last_query"`
	LastTask    string         `json:"last_task"`
	Timestamp   string         `json:"timestamp"`
}

func newCache() *Cache {
	return &Cache{HotFiles: make(map[string]int)}
}

// Tracker persists a Cache at a fixed path. A missing or corrupt file
// loads as an empty cache; tracking is advisory and never fails loads.
type Tracker struct {
	mu   sync.Mutex
	path string
}

// NewTracker creates a tracker storing its cache file under dir.
func NewTracker(dir string) *Tracker {
	return &Tracker{path: filepath.Join(dir, CacheFileName)}
}

// Path returns the cache file location.
func (t *Tracker) Path() string {
	return t.path
}

func (t *Tracker) load() *Cache {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return newCache()
	}
	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return newCache()
	}
	if cache.HotFiles == nil {
		cache.HotFiles = make(map[string]int)
	}
	return &cache
}

func (t *Tracker) save(cache *Cache) error {
	cache.Timestamp = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encode context cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.path), ".context_cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write context cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close context cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace context cache: %w", err)
	}
	return nil
}

// Track records one access to path: it moves to the front of the recency
// list and its hot count increments.
func (t *Tracker) Track(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cache := t.load()

	recent := make([]string, 0, len(cache.RecentFiles)+1)
	recent = append(recent, path)
	for _, p := range cache.RecentFiles {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentFiles {
		recent = recent[:maxRecentFiles]
	}
	cache.RecentFiles = recent
	cache.HotFiles[path]++

	return t.save(cache)
}

// SetQuery records the last search query.
func (t *Tracker) SetQuery(query string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cache := t.load()
	cache.LastQuery = query
	return t.save(cache)
}

// SetTask records the last task description.
func (t *Tracker) SetTask(task string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cache := t.load()
	cache.LastTask = task
	return t.save(cache)
}

// Recent returns up to limit paths, most recent first.
func (t *Tracker) Recent(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	recent := t.load().RecentFiles
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return append([]string(nil), recent...)
}

// Hot returns up to limit paths by descending access count. Equal counts
// order by path for stable output.
func (t *Tracker) Hot(limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cache := t.load()
	paths := make([]string, 0, len(cache.HotFiles))
	for p := range cache.HotFiles {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		ci, cj := cache.HotFiles[paths[i]], cache.HotFiles[paths[j]]
		if ci != cj {
			return ci > cj
		}
		return paths[i] < paths[j]
	})
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	return paths
}
