package contextloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kettleby/autoctx/internal/config"
	"github.com/kettleby/autoctx/pkg/types"
)

// maxFileLines caps how much of a recent or hot file is excerpted.
const maxFileLines = 50

// maxSectionChars caps one rendered context section.
const maxSectionChars = 1500

// Searcher is the semantic retrieval dependency.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error)
}

// section is one file's contribution to the assembled context.
type section struct {
	path    string
	content string
	source  string
}

// Loader assembles a context block for an agent starting a task: recent
// files first, then semantic matches for the task, then hot files,
// deduplicated by path under a token budget.
type Loader struct {
	root     string
	tracker  *Tracker
	searcher Searcher
	cfg      config.ContextConfig
	logger   *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets a logger for retrieval diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// New creates a loader for the project at root. searcher may be nil, in
// which case the semantic pass is skipped.
func New(root string, tracker *Tracker, searcher Searcher, cfg config.ContextConfig, opts ...Option) *Loader {
	ld := &Loader{
		root:     root,
		tracker:  tracker,
		searcher: searcher,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Tracker returns the usage tracker backing this loader.
func (ld *Loader) Tracker() *Tracker {
	return ld.tracker
}

// AutoContext returns a markdown context block for task, spending at
// most tokenBudget whitespace-delimited tokens. Sources are merged in
// priority order: recent, semantic, hot. A path already included by a
// higher-priority source is never replaced, so recency wins ties. A
// tokenBudget of zero or less uses the configured budget.
func (ld *Loader) AutoContext(ctx context.Context, task string, tokenBudget int) (string, error) {
	if tokenBudget <= 0 {
		tokenBudget = ld.cfg.TokenBudget
	}

	var sections []section
	seen := make(map[string]bool)
	tokensUsed := 0

	admit := func(sec section) {
		if seen[sec.path] {
			return
		}
		cost := tokenCount(sec.content)
		if tokensUsed+cost >= tokenBudget {
			return
		}
		seen[sec.path] = true
		tokensUsed += cost
		sections = append(sections, sec)
	}

	for _, path := range ld.tracker.Recent(ld.cfg.RecentLimit) {
		if content, ok := ld.excerpt(path); ok {
			admit(section{path: path, content: content, source: "recent"})
		}
	}

	if task != "" && ld.searcher != nil && tokensUsed < tokenBudget {
		results, err := ld.searcher.Search(ctx, task, ld.cfg.SemanticLimit)
		if err != nil {
			if ld.logger != nil {
				ld.logger.Warn("semantic context unavailable", zap.Error(err))
			}
		} else {
			for _, res := range results {
				admit(section{path: res.Chunk.Path, content: res.Chunk.Content, source: "semantic"})
			}
		}
		if err := ld.tracker.SetTask(task); err != nil && ld.logger != nil {
			ld.logger.Warn("failed to record task", zap.Error(err))
		}
	}

	if tokensUsed < tokenBudget {
		for _, path := range ld.tracker.Hot(ld.cfg.HotLimit) {
			if content, ok := ld.excerpt(path); ok {
				admit(section{path: path, content: content, source: "hot"})
			}
		}
	}

	return render(sections, tokensUsed), nil
}

// excerpt reads up to maxFileLines lines of a tracked file. Missing or
// unreadable files are silently skipped; stale tracker entries are
// expected after deletes.
func (ld *Loader) excerpt(path string) (string, bool) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(ld.root, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", false
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > maxFileLines {
		lines = lines[:maxFileLines]
	}
	return strings.Join(lines, "\n"), true
}

// render formats the assembled sections as a markdown block.
func render(sections []section, tokensUsed int) string {
	var b strings.Builder
	b.WriteString("# Auto-Loaded Context\n")
	fmt.Fprintf(&b, "# Files: %d | Tokens: ~%d\n\n", len(sections), tokensUsed)

	for _, sec := range sections {
		content := sec.content
		if len(content) > maxSectionChars {
			content = content[:maxSectionChars]
		}
		fmt.Fprintf(&b, "## %s\n", filepath.Base(sec.path))
		fmt.Fprintf(&b, "# %s (%s)\n", sec.path, sec.source)
		b.WriteString("```\n")
		b.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func tokenCount(s string) int {
	return len(strings.Fields(s))
}
