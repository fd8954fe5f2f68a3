// Package llm is the single entry point for generation and embedding calls.
// It resolves a per-request ModelConfig to a provider adapter and returns
// normalized results.
package llm

import (
	"context"
	"fmt"

	"github.com/nidhogg/concerto-copilot/internal/embedcache"
	"github.com/nidhogg/concerto-copilot/internal/embedding"
	"github.com/nidhogg/concerto-copilot/internal/llmerr"
	"github.com/nidhogg/concerto-copilot/internal/provider"
	"go.uber.org/zap"
)

// ModelConfig describes which provider serves a request and how.
type ModelConfig struct {
	Provider         string   `json:"provider"`
	Model            string   `json:"model,omitempty"`
	EmbeddingModel   string   `json:"embedding_model,omitempty"`
	Endpoint         string   `json:"endpoint,omitempty"`
	EmbeddingURL     string   `json:"embedding_url,omitempty"`
	AccessToken      string   `json:"access_token,omitempty"`
	MaxTokens        int      `json:"max_tokens,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
}

// Validate checks the fields every request needs.
func (c ModelConfig) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("model config: provider is required")
	}
	if !provider.Known(c.Provider) {
		return fmt.Errorf("model config: unknown provider %q", c.Provider)
	}
	if c.AccessToken == "" && c.Provider != provider.Ollama {
		return fmt.Errorf("model config: access token is required for %s", c.Provider)
	}
	return nil
}

// Gateway dispatches generation and embedding calls.
type Gateway struct {
	cache  embedcache.Cache
	logger *zap.Logger
}

// NewGateway creates a Gateway. cache may be nil.
func NewGateway(cache embedcache.Cache, logger *zap.Logger) *Gateway {
	return &Gateway{cache: cache, logger: logger}
}

// GenerateContent sends messages to the configured provider and returns the
// first choice's text.
func (g *Gateway) GenerateContent(ctx context.Context, cfg ModelConfig, messages []provider.Message) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", &llmerr.GenerationError{Detail: llmerr.Processing(cfg.Provider, "invalid model config", err)}
	}
	p, err := provider.New(provider.ProviderConfig{
		ID:       cfg.Provider,
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.AccessToken,
	}, g.logger)
	if err != nil {
		return "", &llmerr.GenerationError{Detail: llmerr.Processing(cfg.Provider, "resolve provider", err)}
	}

	model := cfg.Model
	if model == "" {
		model = provider.DefaultModel(cfg.Provider)
	}
	resp, err := p.Chat(ctx, &provider.ChatRequest{
		Model:            model,
		Messages:         messages,
		Temperature:      cfg.Temperature,
		MaxTokens:        cfg.MaxTokens,
		TopP:             cfg.TopP,
		FrequencyPenalty: cfg.FrequencyPenalty,
		PresencePenalty:  cfg.PresencePenalty,
	})
	if err != nil {
		g.logger.Warn("generation failed", zap.String("provider", cfg.Provider), zap.Error(err))
		return "", err
	}
	return resp.Content, nil
}

// GenerateEmbeddings returns the embedding of text from the configured
// provider, consulting the cache first.
func (g *Gateway) GenerateEmbeddings(ctx context.Context, cfg ModelConfig, text string) ([]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &llmerr.EmbeddingError{Detail: llmerr.Processing(cfg.Provider, "invalid model config", err)}
	}
	if !embedding.Supports(cfg.Provider) {
		return nil, &llmerr.EmbeddingError{Detail: llmerr.Processing(cfg.Provider, "provider does not support embeddings", nil)}
	}

	endpoint := cfg.EmbeddingURL
	if endpoint == "" {
		// A generation endpoint may name the chat completions resource.
		endpoint = provider.BaseURL(cfg.Endpoint)
	}
	e, err := embedding.New(embedding.Config{
		Provider: cfg.Provider,
		Endpoint: endpoint,
		Model:    cfg.EmbeddingModel,
		APIKey:   cfg.AccessToken,
	})
	if err != nil {
		return nil, &llmerr.EmbeddingError{Detail: llmerr.Processing(cfg.Provider, "resolve embedder", err)}
	}

	key := embedcache.Key(cfg.Provider, e.Model(), text)
	if g.cache != nil {
		if vec, ok := g.cache.Get(ctx, key); ok {
			g.logger.Debug("embedding cache hit", zap.String("provider", cfg.Provider))
			return vec, nil
		}
	}

	vec, err := e.Embed(ctx, text)
	if err != nil {
		g.logger.Warn("embedding failed", zap.String("provider", cfg.Provider), zap.Error(err))
		return nil, err
	}
	if g.cache != nil {
		g.cache.Set(ctx, key, vec)
	}
	return vec, nil
}
