// Package config provides configuration loading for the autoctx server.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the optional project-local config file.
const FileName = ".autoctx.yaml"

// Config holds all configuration for the application.
type Config struct {
	// Extensions is the allowlist of file extensions to index.
	Extensions []string `yaml:"extensions"`

	// Ignore holds doublestar glob patterns excluded from indexing, in
	// addition to the built-in ignore rules (VCS metadata, vendor trees,
	// hidden directories).
	Ignore []string `yaml:"ignore"`

	Chunker   ChunkerConfig   `yaml:"chunker"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Search    SearchConfig    `yaml:"search"`
	Context   ContextConfig   `yaml:"context"`
	Watch     WatchConfig     `yaml:"watch"`
	Embedding EmbeddingConfig `yaml:"embedding"`
}

// ChunkerConfig holds chunk sizing settings.
type ChunkerConfig struct {
	MinLines      int `yaml:"min_lines"`
	WindowLines   int `yaml:"window_lines"`
	WindowOverlap int `yaml:"window_overlap"`
}

// IndexerConfig holds reindex worker-pool settings.
type IndexerConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// SearchConfig holds query settings.
type SearchConfig struct {
	DefaultLimit    int `yaml:"default_limit"`
	MaxLimit        int `yaml:"max_limit"`
	CacheSize       int `yaml:"cache_size"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// ContextConfig holds auto-context loader budgets.
type ContextConfig struct {
	TokenBudget   int `yaml:"token_budget"`
	RecentLimit   int `yaml:"recent_limit"`
	SemanticLimit int `yaml:"semantic_limit"`
	HotLimit      int `yaml:"hot_limit"`
}

// WatchConfig holds live-reindex settings.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
}

// EmbeddingConfig optionally pins the embedding provider; empty means
// env-based auto-detection.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Extensions: []string{".go", ".py", ".js", ".ts", ".rs", ".java", ".md"},
		Ignore:     nil,
		Chunker: ChunkerConfig{
			MinLines:      5,
			WindowLines:   50,
			WindowOverlap: 10,
		},
		Indexer: IndexerConfig{
			Workers:   4,
			BatchSize: 32,
		},
		Search: SearchConfig{
			DefaultLimit:    10,
			MaxLimit:        100,
			CacheSize:       1000,
			CacheTTLSeconds: 60,
		},
		Context: ContextConfig{
			TokenBudget:   4000,
			RecentLimit:   3,
			SemanticLimit: 3,
			HotLimit:      2,
		},
		Watch: WatchConfig{
			Enabled:    false,
			DebounceMs: 400,
		},
	}
}

// Load reads and parses the config file at path and applies defaults for
// unset values. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadProject loads <root>/.autoctx.yaml when present, otherwise defaults.
// A malformed config file is an error; a missing one is not.
func LoadProject(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// applyDefaults backfills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := Default()
	if len(c.Extensions) == 0 {
		c.Extensions = def.Extensions
	}
	if c.Chunker.MinLines <= 0 {
		c.Chunker.MinLines = def.Chunker.MinLines
	}
	if c.Chunker.WindowLines <= 0 {
		c.Chunker.WindowLines = def.Chunker.WindowLines
	}
	if c.Chunker.WindowOverlap <= 0 {
		c.Chunker.WindowOverlap = def.Chunker.WindowOverlap
	}
	if c.Indexer.Workers <= 0 {
		c.Indexer.Workers = def.Indexer.Workers
	}
	if c.Indexer.BatchSize <= 0 {
		c.Indexer.BatchSize = def.Indexer.BatchSize
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = def.Search.DefaultLimit
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = def.Search.MaxLimit
	}
	if c.Search.CacheSize <= 0 {
		c.Search.CacheSize = def.Search.CacheSize
	}
	if c.Search.CacheTTLSeconds <= 0 {
		c.Search.CacheTTLSeconds = def.Search.CacheTTLSeconds
	}
	if c.Context.TokenBudget <= 0 {
		c.Context.TokenBudget = def.Context.TokenBudget
	}
	if c.Context.RecentLimit <= 0 {
		c.Context.RecentLimit = def.Context.RecentLimit
	}
	if c.Context.SemanticLimit <= 0 {
		c.Context.SemanticLimit = def.Context.SemanticLimit
	}
	if c.Context.HotLimit <= 0 {
		c.Context.HotLimit = def.Context.HotLimit
	}
	if c.Watch.DebounceMs <= 0 {
		c.Watch.DebounceMs = def.Watch.DebounceMs
	}
}
