package chunker

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kettleby/autoctx/pkg/types"
)

const (
	// DefaultMinLines is the soft minimum chunk size; consecutive smaller
	// definitions are merged until it is met.
	DefaultMinLines = 5

	// DefaultWindowLines is the fallback sliding-window size.
	DefaultWindowLines = 50

	// DefaultWindowOverlap is the overlap between consecutive windows.
	DefaultWindowOverlap = 10
)

// Strategy identifies how a file was split.
type Strategy string

const (
	// StrategyStructural splits at top-level declaration boundaries.
	StrategyStructural Strategy = "structural"
	// StrategyWindowed splits into fixed-size overlapping windows.
	StrategyWindowed Strategy = "windowed"
)

// Splitter produces an ordered sequence of chunks covering the whole file.
type Splitter interface {
	Split(path string, content []byte) ([]types.Chunk, error)
	Strategy() Strategy
}

// Config controls chunk sizing.
type Config struct {
	MinLines      int
	WindowLines   int
	WindowOverlap int
}

// DefaultConfig returns the default chunk sizing.
func DefaultConfig() Config {
	return Config{
		MinLines:      DefaultMinLines,
		WindowLines:   DefaultWindowLines,
		WindowOverlap: DefaultWindowOverlap,
	}
}

func (c *Config) normalize() {
	if c.MinLines <= 0 {
		c.MinLines = DefaultMinLines
	}
	if c.WindowLines <= 0 {
		c.WindowLines = DefaultWindowLines
	}
	if c.WindowOverlap < 0 || c.WindowOverlap >= c.WindowLines {
		c.WindowOverlap = DefaultWindowOverlap
		if c.WindowOverlap >= c.WindowLines {
			c.WindowOverlap = c.WindowLines / 2
		}
	}
}

// Chunker splits source files into embeddable chunks, preferring structural
// boundaries and degrading to windowed splitting when parsing fails.
type Chunker struct {
	structural Splitter
	windowed   Splitter
	logger     *zap.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithLogger sets a logger for fallback warnings.
func WithLogger(l *zap.Logger) Option {
	return func(c *Chunker) { c.logger = l }
}

// New creates a Chunker with the given sizing config.
func New(cfg Config, opts ...Option) *Chunker {
	cfg.normalize()
	c := &Chunker{
		structural: &structuralSplitter{minLines: cfg.MinLines},
		windowed:   &windowSplitter{lines: cfg.WindowLines, overlap: cfg.WindowOverlap},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectStrategy is the pure strategy choice: structural for Go sources
// that parsed cleanly, windowed otherwise.
func SelectStrategy(path string, parseErr error) Strategy {
	if !isGoFile(path) || parseErr != nil {
		return StrategyWindowed
	}
	return StrategyStructural
}

// ChunkFile splits content into the chunks SelectStrategy chooses for
// it. Parse failure is non-fatal: the windowed fallback guarantees no
// content is silently dropped.
func (c *Chunker) ChunkFile(path string, content []byte) []types.Chunk {
	var (
		structural []types.Chunk
		parseErr   error
	)
	if isGoFile(path) {
		structural, parseErr = c.structural.Split(path, content)
		if parseErr != nil && c.logger != nil {
			c.logger.Warn("structural chunking failed, falling back to windows",
				zap.String("path", path), zap.Error(parseErr))
		}
	}

	if SelectStrategy(path, parseErr) == StrategyStructural {
		return structural
	}
	chunks, _ := c.windowed.Split(path, content)
	return chunks
}

func isGoFile(path string) bool {
	return filepath.Ext(path) == ".go"
}

// splitLines splits content preserving interior blank lines and dropping a
// single trailing newline's phantom last element.
func splitLines(content []byte) []string {
	lines := strings.Split(string(content), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
