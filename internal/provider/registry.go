package provider

import (
	"fmt"

	"go.uber.org/zap"
)

var defaultEndpoints = map[string]string{
	OpenAI:    "https://api.openai.com/v1",
	Mistral:   "https://api.mistral.ai/v1",
	Ollama:    "http://localhost:11434/v1",
	Gemini:    "https://generativelanguage.googleapis.com/v1beta",
	Anthropic: "https://api.anthropic.com/v1",
}

var defaultModels = map[string]string{
	OpenAI:    "gpt-4o-mini",
	Mistral:   "mistral-large-latest",
	Ollama:    "llama3.1",
	Gemini:    "gemini-1.5-flash",
	Anthropic: "claude-3-5-haiku-20241022",
}

// DefaultEndpoint returns the base URL used when a config names none.
func DefaultEndpoint(id string) string { return defaultEndpoints[id] }

// DefaultModel returns the generation model used when a config names none.
func DefaultModel(id string) string { return defaultModels[id] }

// Known reports whether id names a supported generation provider.
func Known(id string) bool {
	_, ok := defaultEndpoints[id]
	return ok
}

// New builds the adapter for cfg.ID.
func New(cfg ProviderConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.ID {
	case OpenAI, Mistral, Ollama:
		return NewOpenAIProvider(cfg, logger), nil
	case Gemini:
		return NewGeminiProvider(cfg, logger), nil
	case Anthropic:
		return NewAnthropicProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.ID)
	}
}
