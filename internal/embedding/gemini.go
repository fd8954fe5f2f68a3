package embedding

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nidhogg/concerto-copilot/internal/provider"
)

// GeminiProvider implements Provider using the Gemini embedContent API.
type GeminiProvider struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewGeminiProvider creates a new GeminiProvider from the given Config.
func NewGeminiProvider(cfg Config) *GeminiProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel(provider.Gemini)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = provider.DefaultEndpoint(provider.Gemini)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &GeminiProvider{
		endpoint: cfg.Endpoint,
		model:    strings.TrimPrefix(cfg.Model, "models/"),
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Model returns the embedding model name.
func (p *GeminiProvider) Model() string { return p.model }

func (p *GeminiProvider) embedURL() string {
	if strings.Contains(p.endpoint, ":embedContent") {
		return p.endpoint
	}
	return strings.TrimRight(p.endpoint, "/") + "/models/" + p.model + ":embedContent"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedRequest struct {
	Model   string `json:"model"`
	Content struct {
		Parts []geminiPart `json:"parts"`
	} `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed requests a single embedding for text.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	req := geminiEmbedRequest{Model: "models/" + p.model}
	req.Content.Parts = []geminiPart{{Text: text}}

	var result geminiEmbedResponse
	headers := map[string]string{"x-goog-api-key": p.apiKey}
	if err := postJSON(ctx, p.client, provider.Gemini, p.embedURL(), headers, req, &result); err != nil {
		return nil, err
	}
	if len(result.Embedding.Values) == 0 {
		return nil, malformed(provider.Gemini, "empty embedding")
	}
	return result.Embedding.Values, nil
}
