package integration

import (
	"context"
	"math"
	"strings"
	"sync/atomic"
)

// MockEmbedder generates deterministic vectors from keyword overlap, so
// tests can predict similarity ordering: texts sharing more keywords
// with a query score higher. It also counts provider traffic, which
// lets tests prove the embedding cache absorbed repeat content.
type MockEmbedder struct {
	keywords []string

	BatchCalls    atomic.Int32
	TextsEmbedded atomic.Int32
}

// NewMockEmbedder creates a mock over the given keyword vocabulary.
func NewMockEmbedder(keywords ...string) *MockEmbedder {
	if len(keywords) == 0 {
		keywords = []string{"default"}
	}
	return &MockEmbedder{keywords: keywords}
}

func (m *MockEmbedder) embed(text string) []float32 {
	// One dimension per keyword plus a shared baseline so no vector has
	// zero norm.
	vector := make([]float32, len(m.keywords)+1)
	vector[len(m.keywords)] = 0.1

	lower := strings.ToLower(text)
	for i, kw := range m.keywords {
		vector[i] = float32(strings.Count(lower, kw))
	}

	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	norm := float32(math.Sqrt(sum))
	for i := range vector {
		vector[i] /= norm
	}
	return vector
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.BatchCalls.Add(1)
	m.TextsEmbedded.Add(int32(len(texts)))

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.embed(text)
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimension() int   { return len(m.keywords) + 1 }
func (m *MockEmbedder) Provider() string { return "mock" }
func (m *MockEmbedder) Model() string    { return "mock-v1" }
func (m *MockEmbedder) Close() error     { return nil }
