package embedder

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
)

// LocalProvider is a deterministic offline embedder. Vectors are derived
// from the text's SHA-256 digest and L2-normalized, so identical text
// always produces identical unit vectors. It exists for tests and for
// running without API credentials; it carries no semantic signal.
type LocalProvider struct {
	model string
}

// NewLocalProvider creates a local embedder.
func NewLocalProvider() (*LocalProvider, error) {
	return &LocalProvider{model: "local-hash-v1"}, nil
}

func (l *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector := make([]float32, LocalDimension)
	digest := sha256.Sum256([]byte(text))

	// Stretch the 32-byte digest across the whole dimension by re-hashing
	// with a counter, then normalize to unit length.
	for i := 0; i < LocalDimension; i += len(digest) {
		for j := 0; j < len(digest) && i+j < LocalDimension; j++ {
			vector[i+j] = float32(digest[j])/255.0 - 0.5
		}
		digest = sha256.Sum256(digest[:])
	}

	normalize(vector)
	return vector, nil
}

func (l *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := l.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}

// normalize scales v to unit length in place. Zero vectors are left as is.
func normalize(v []float32) {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
