package embedding

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nidhogg/concerto-copilot/internal/provider"
)

// APIProvider implements Provider using an OpenAI-compatible embeddings API.
// It serves the openai, mistral and ollama providers.
type APIProvider struct {
	providerID string
	url        string
	model      string
	apiKey     string
	client     *http.Client
}

// NewAPIProvider creates a new APIProvider from the given Config.
func NewAPIProvider(cfg Config) *APIProvider {
	if cfg.Provider == "" {
		cfg.Provider = provider.OpenAI
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = provider.DefaultEndpoint(cfg.Provider)
	}
	return &APIProvider{
		providerID: cfg.Provider,
		url:        embeddingsURL(endpoint),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// embeddingsURL appends "/embeddings" unless the endpoint already points
// at the embeddings resource.
func embeddingsURL(endpoint string) string {
	if strings.Contains(endpoint, "/embeddings") {
		return endpoint
	}
	return strings.TrimRight(endpoint, "/") + "/embeddings"
}

type apiRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type apiEmbeddingData struct {
	Embedding []float32 `json:"embedding"`
}

type apiResponse struct {
	Data []apiEmbeddingData `json:"data"`
}

// Model returns the embedding model name.
func (p *APIProvider) Model() string { return p.model }

// Embed sends text to the OpenAI-compatible endpoint and returns the first
// result's vector.
func (p *APIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	var result apiResponse
	if err := postJSON(ctx, p.client, p.providerID, p.url, headers, apiRequest{Input: []string{text}, Model: p.model}, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, malformed(p.providerID, "no data")
	}
	if len(result.Data[0].Embedding) == 0 {
		return nil, malformed(p.providerID, "empty embedding")
	}
	return result.Data[0].Embedding, nil
}
