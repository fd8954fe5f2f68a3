package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible APIs.
// Mistral and Ollama share the same request and response shape.
type OpenAIProvider struct {
	config ProviderConfig
	client *http.Client
	logger *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(cfg ProviderConfig, logger *zap.Logger) *OpenAIProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if cfg.ID == "" {
		cfg.ID = OpenAI
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint(cfg.ID)
	}
	return &OpenAIProvider{
		config: cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *OpenAIProvider) ID() string { return p.config.ID }

const chatCompletionsPath = "/chat/completions"

// BaseURL returns the API base of an OpenAI-shaped endpoint, dropping a
// trailing chat completions path so sibling resources such as /embeddings
// resolve against the same API.
func BaseURL(endpoint string) string {
	return strings.TrimSuffix(strings.TrimRight(endpoint, "/"), chatCompletionsPath)
}

// chatURL builds the chat completions URL. An endpoint that already names
// the completions path is used as is.
func (p *OpenAIProvider) chatURL() string {
	return BaseURL(p.config.Endpoint) + chatCompletionsPath
}

// Chat sends a non-streaming chat request.
func (p *OpenAIProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	headers := map[string]string{}
	if p.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.config.APIKey
	}

	var oaiResp openAIChatResponse
	if err := postJSON(ctx, p.client, p.config.ID, p.chatURL(), headers, req, &oaiResp); err != nil {
		return nil, err
	}

	if len(oaiResp.Choices) == 0 {
		return nil, emptyResponse(p.config.ID, "no choices")
	}

	choice := oaiResp.Choices[0]
	p.logger.Debug("chat completion",
		zap.String("provider", p.config.ID),
		zap.String("model", oaiResp.Model),
		zap.Int("total_tokens", oaiResp.Usage.TotalTokens))

	return &ChatResponse{
		ID:           oaiResp.ID,
		Model:        oaiResp.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage:        oaiResp.Usage,
	}, nil
}

// openAI-specific response types
type openAIChatResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   Usage          `json:"usage"`
}

type openAIChoice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}
