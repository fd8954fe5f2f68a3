// Package embedding turns query text into vectors via OpenAI-shaped or
// Gemini-shaped embedding endpoints.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/nidhogg/concerto-copilot/internal/provider"
)

// Provider generates a vector embedding from text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Config holds embedding provider configuration.
type Config struct {
	Provider string        `json:"provider"` // openai, mistral, ollama, gemini
	Endpoint string        `json:"endpoint"`
	Model    string        `json:"model"`
	APIKey   string        `json:"api_key"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

var defaultModels = map[string]string{
	provider.OpenAI:  "text-embedding-3-small",
	provider.Mistral: "mistral-embed",
	provider.Ollama:  "nomic-embed-text",
	provider.Gemini:  "text-embedding-004",
}

// DefaultModel returns the embedding model used when a config names none.
func DefaultModel(providerID string) string { return defaultModels[providerID] }

// Supports reports whether providerID can produce embeddings.
func Supports(providerID string) bool {
	_, ok := defaultModels[providerID]
	return ok
}

// New builds the embedding adapter for cfg.Provider.
func New(cfg Config) (Provider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	switch cfg.Provider {
	case provider.OpenAI, provider.Mistral, provider.Ollama:
		return NewAPIProvider(cfg), nil
	case provider.Gemini:
		return NewGeminiProvider(cfg), nil
	default:
		return nil, fmt.Errorf("provider %q does not support embeddings", cfg.Provider)
	}
}
