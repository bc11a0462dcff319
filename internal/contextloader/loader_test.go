package contextloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kettleby/autoctx/internal/config"
	"github.com/kettleby/autoctx/pkg/types"
)

type stubSearcher struct {
	results []types.SearchResult
	err     error
	calls   int
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.results) {
		return s.results[:limit], nil
	}
	return s.results, nil
}

func searchResult(path, content string) types.SearchResult {
	return types.SearchResult{
		Chunk: types.Chunk{Path: path, StartLine: 1, EndLine: 5, Content: content},
		Score: 0.9,
	}
}

func newTestLoader(t *testing.T, root string, s Searcher) *Loader {
	t.Helper()
	tracker := NewTracker(filepath.Join(root, ".autoctx"))
	return New(root, tracker, s, config.Default().Context)
}

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestTracker_RecentOrderAndCap(t *testing.T) {
	tracker := NewTracker(t.TempDir())

	for i := 0; i < 25; i++ {
		require.NoError(t, tracker.Track(fmt.Sprintf("f%02d.go", i)))
	}
	require.NoError(t, tracker.Track("f03.go"))

	recent := tracker.Recent(0)
	assert.Len(t, recent, 20)
	assert.Equal(t, "f03.go", recent[0])
	assert.Equal(t, "f24.go", recent[1])
}

func TestTracker_HotOrdering(t *testing.T) {
	tracker := NewTracker(t.TempDir())

	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.Track("busy.go"))
	}
	require.NoError(t, tracker.Track("idle.go"))
	require.NoError(t, tracker.Track("also_idle.go"))

	hot := tracker.Hot(2)
	require.Len(t, hot, 2)
	assert.Equal(t, "busy.go", hot[0])
	// Equal counts break ties by path.
	assert.Equal(t, "also_idle.go", hot[1])
}

func TestTracker_CorruptCacheLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir)
	require.NoError(t, os.WriteFile(tracker.Path(), []byte("{not json"), 0644))

	assert.Empty(t, tracker.Recent(5))
	require.NoError(t, tracker.Track("a.go"))
	assert.Equal(t, []string{"a.go"}, tracker.Recent(5))
}

func TestAutoContext_PriorityOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"recent.go", "newer.go", "newest.go", "hot.go"} {
		writeProjectFile(t, root, name, "package x\nfunc F() {}\n")
	}

	search := &stubSearcher{results: []types.SearchResult{
		searchResult("match.go", "func Match() { return }"),
	}}
	loader := newTestLoader(t, root, search)

	// hot.go has the most accesses but three newer files push it out of
	// the recency window, so it can only arrive via the hot pass.
	for i := 0; i < 5; i++ {
		require.NoError(t, loader.Tracker().Track("hot.go"))
	}
	for _, name := range []string{"recent.go", "newer.go", "newest.go"} {
		require.NoError(t, loader.Tracker().Track(name))
	}

	out, err := loader.AutoContext(context.Background(), "matching things", 0)
	require.NoError(t, err)

	iRecent := strings.Index(out, "newest.go (recent)")
	iMatch := strings.Index(out, "match.go (semantic)")
	iHot := strings.Index(out, "hot.go (hot)")
	require.GreaterOrEqual(t, iRecent, 0)
	require.GreaterOrEqual(t, iMatch, 0)
	require.GreaterOrEqual(t, iHot, 0)
	assert.Less(t, iRecent, iMatch)
	assert.Less(t, iMatch, iHot)
}

func TestAutoContext_DeduplicatesByPathRecencyWins(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "shared.go", "package shared\nfunc Shared() {}\n")

	// The same path also comes back from semantic search.
	search := &stubSearcher{results: []types.SearchResult{
		searchResult("shared.go", "func Shared() {}"),
	}}
	loader := newTestLoader(t, root, search)
	require.NoError(t, loader.Tracker().Track("shared.go"))

	out, err := loader.AutoContext(context.Background(), "shared", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "## shared.go"))
	assert.Contains(t, out, "shared.go (recent)")
	assert.NotContains(t, out, "shared.go (semantic)")
}

func TestAutoContext_RespectsTokenBudget(t *testing.T) {
	root := t.TempDir()
	big := strings.Repeat("word ", 500)
	writeProjectFile(t, root, "first.go", big)
	writeProjectFile(t, root, "second.go", big)

	loader := newTestLoader(t, root, nil)
	require.NoError(t, loader.Tracker().Track("second.go"))
	require.NoError(t, loader.Tracker().Track("first.go"))

	// Budget admits one 50-line excerpt but not two.
	out, err := loader.AutoContext(context.Background(), "", 600)
	require.NoError(t, err)

	assert.Contains(t, out, "## first.go")
	assert.NotContains(t, out, "## second.go")
}

func TestAutoContext_EmptyTaskSkipsSearch(t *testing.T) {
	root := t.TempDir()
	search := &stubSearcher{results: []types.SearchResult{searchResult("m.go", "x")}}
	loader := newTestLoader(t, root, search)

	out, err := loader.AutoContext(context.Background(), "", 0)
	require.NoError(t, err)

	assert.Equal(t, 0, search.calls)
	assert.Contains(t, out, "# Auto-Loaded Context")
	assert.Contains(t, out, "Files: 0")
}

func TestAutoContext_SearchFailureIsNotFatal(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "recent.go", "package recent\n")

	search := &stubSearcher{err: errors.New("provider down")}
	loader := newTestLoader(t, root, search)
	require.NoError(t, loader.Tracker().Track("recent.go"))

	out, err := loader.AutoContext(context.Background(), "some task", 0)
	require.NoError(t, err)
	assert.Contains(t, out, "## recent.go")
}

func TestAutoContext_SkipsDeletedFiles(t *testing.T) {
	root := t.TempDir()
	loader := newTestLoader(t, root, nil)
	require.NoError(t, loader.Tracker().Track("gone.go"))

	out, err := loader.AutoContext(context.Background(), "", 0)
	require.NoError(t, err)
	assert.NotContains(t, out, "gone.go")
}
