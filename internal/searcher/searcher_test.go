package searcher

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kettleby/autoctx/internal/config"
	"github.com/kettleby/autoctx/internal/index"
	"github.com/kettleby/autoctx/pkg/types"
)

// stubEmbedder returns a fixed query vector and counts calls.
type stubEmbedder struct {
	vector []float32
	calls  int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.vector, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int   { return len(s.vector) }
func (s *stubEmbedder) Provider() string { return "stub" }
func (s *stubEmbedder) Model() string    { return "stub" }
func (s *stubEmbedder) Close() error     { return nil }

// fixedSnapshot serves a single snapshot.
type fixedSnapshot struct {
	ix *index.Index
}

func (f *fixedSnapshot) Snapshot() *index.Index { return f.ix }

func entry(path string, startLine int, vector []float32) *types.IndexEntry {
	content := fmt.Sprintf("content of %s:%d", path, startLine)
	return &types.IndexEntry{
		Chunk: types.Chunk{
			Path:        path,
			StartLine:   startLine,
			EndLine:     startLine + 4,
			Content:     content,
			ContentHash: fmt.Sprintf("hash-%s-%d", path, startLine),
		},
		Vector: vector,
	}
}

func newSearcherOver(ix *index.Index, emb *stubEmbedder) *Searcher {
	return New(&fixedSnapshot{ix: ix}, emb, config.Default().Search)
}

func TestSearch_RanksByCosineSimilarity(t *testing.T) {
	ix := index.New(3)
	ix.ReplaceFile("aligned.go", []*types.IndexEntry{entry("aligned.go", 1, []float32{1, 0, 0})})
	ix.ReplaceFile("oblique.go", []*types.IndexEntry{entry("oblique.go", 1, []float32{1, 1, 0})})
	ix.ReplaceFile("orthogonal.go", []*types.IndexEntry{entry("orthogonal.go", 1, []float32{0, 0, 1})})

	s := newSearcherOver(ix, &stubEmbedder{vector: []float32{1, 0, 0}})
	results, err := s.Search(context.Background(), "query", 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "aligned.go", results[0].Chunk.Path)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "oblique.go", results[1].Chunk.Path)
	assert.Equal(t, "orthogonal.go", results[2].Chunk.Path)
	assert.InDelta(t, 0.0, results[2].Score, 1e-6)
}

func TestSearch_LimitTruncates(t *testing.T) {
	ix := index.New(3)
	for i := 0; i < 10; i++ {
		path := fmt.Sprintf("f%d.go", i)
		ix.ReplaceFile(path, []*types.IndexEntry{entry(path, 1, []float32{1, float32(i) * 0.1, 0})})
	}

	s := newSearcherOver(ix, &stubEmbedder{vector: []float32{1, 0, 0}})
	results, err := s.Search(context.Background(), "query", 4)
	require.NoError(t, err)
	assert.Len(t, results, 4)
}

func TestSearch_EmptyQueryAndEmptyIndex(t *testing.T) {
	empty := index.New(3)
	s := newSearcherOver(empty, &stubEmbedder{vector: []float32{1, 0, 0}})

	results, err := s.Search(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_TieBreakByPathThenStartLine(t *testing.T) {
	// Identical vectors produce identical scores; order must be path
	// ascending, then start line ascending.
	v := []float32{1, 0, 0}
	ix := index.New(3)
	ix.ReplaceFile("b.go", []*types.IndexEntry{entry("b.go", 1, v)})
	ix.ReplaceFile("a.go", []*types.IndexEntry{
		entry("a.go", 40, v),
		entry("a.go", 10, v),
	})

	s := newSearcherOver(ix, &stubEmbedder{vector: v})
	results, err := s.Search(context.Background(), "query", 10)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "a.go", results[0].Chunk.Path)
	assert.Equal(t, 10, results[0].Chunk.StartLine)
	assert.Equal(t, "a.go", results[1].Chunk.Path)
	assert.Equal(t, 40, results[1].Chunk.StartLine)
	assert.Equal(t, "b.go", results[2].Chunk.Path)
}

func TestSearch_ZeroNormVectorScoresZero(t *testing.T) {
	ix := index.New(3)
	ix.ReplaceFile("zero.go", []*types.IndexEntry{entry("zero.go", 1, []float32{0, 0, 0})})
	ix.ReplaceFile("unit.go", []*types.IndexEntry{entry("unit.go", 1, []float32{0, 1, 0})})

	s := newSearcherOver(ix, &stubEmbedder{vector: []float32{0, 1, 0}})
	results, err := s.Search(context.Background(), "query", 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "unit.go", results[0].Chunk.Path)
	assert.Equal(t, float64(0), results[1].Score)
}

func TestSearch_CacheHitSkipsEmbedding(t *testing.T) {
	ix := index.New(3)
	ix.ReplaceFile("a.go", []*types.IndexEntry{entry("a.go", 1, []float32{1, 0, 0})})

	emb := &stubEmbedder{vector: []float32{1, 0, 0}}
	s := newSearcherOver(ix, emb)

	first, err := s.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "query", 5)
	require.NoError(t, err)

	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, first, second)
}

func TestSearch_NewSnapshotInvalidatesCache(t *testing.T) {
	provider := &fixedSnapshot{ix: index.New(3)}
	provider.ix.ReplaceFile("a.go", []*types.IndexEntry{entry("a.go", 1, []float32{1, 0, 0})})

	emb := &stubEmbedder{vector: []float32{1, 0, 0}}
	s := New(provider, emb, config.Default().Search)

	_, err := s.Search(context.Background(), "query", 5)
	require.NoError(t, err)

	// Publishing a new snapshot forces a fresh ranking.
	provider.ix = provider.ix.Clone()
	_, err = s.Search(context.Background(), "query", 5)
	require.NoError(t, err)

	assert.Equal(t, 2, emb.calls)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"empty", nil, nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTopK_MatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, k := range []int{1, 3, 7, 50, 200} {
		var all []types.SearchResult
		heap := newTopK(k)
		for i := 0; i < 100; i++ {
			r := types.SearchResult{
				Chunk: types.Chunk{
					Path:      fmt.Sprintf("f%d.go", i%10),
					StartLine: i,
				},
				// Duplicate scores exercise the tie-break path.
				Score: float64(rng.Intn(20)) / 20,
			}
			all = append(all, r)
			heap.offer(r)
		}

		sortResults(all)
		want := all
		if k < len(want) {
			want = want[:k]
		}
		assert.Equal(t, want, heap.drain(), "k=%d", k)
	}
}

func TestTopK_ZeroAndEmpty(t *testing.T) {
	assert.Empty(t, newTopK(0).drain())

	h := newTopK(5)
	assert.Empty(t, h.drain())
}
