package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by the factory.
const (
	EnvProvider     = "AUTOCTX_EMBEDDING_PROVIDER"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvJinaAPIKey   = "JINA_API_KEY"
)

// Config holds embedder configuration
type Config struct {
	Provider string
	APIKey   string
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
// 1. AUTOCTX_EMBEDDING_PROVIDER (openai, jina, local)
// 2. Check for API keys: OPENAI_API_KEY, JINA_API_KEY
// 3. Default to local if no API keys found
func NewFromEnv() (Embedder, error) {
	provider := os.Getenv(EnvProvider)
	openaiKey := os.Getenv(EnvOpenAIAPIKey)
	jinaKey := os.Getenv(EnvJinaAPIKey)

	if provider != "" {
		return New(Config{Provider: provider})
	}

	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey)
	}
	if jinaKey != "" {
		return NewJinaProvider(jinaKey)
	}

	return NewLocalProvider()
}

// New creates an embedder with explicit configuration. An empty APIKey
// falls back to the provider's environment variable.
func New(cfg Config) (Embedder, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey)
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey)
	case ProviderLocal:
		return NewLocalProvider()
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on the
// current environment.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	return ProviderLocal
}
