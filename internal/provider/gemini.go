package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// GeminiProvider implements the Provider interface for the Gemini
// generateContent API.
type GeminiProvider struct {
	config ProviderConfig
	client *http.Client
	logger *zap.Logger
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(cfg ProviderConfig, logger *zap.Logger) *GeminiProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	cfg.ID = Gemini
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint(Gemini)
	}
	return &GeminiProvider{
		config: cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *GeminiProvider) ID() string { return p.config.ID }

func (p *GeminiProvider) generateURL(model string) string {
	return strings.TrimRight(p.config.Endpoint, "/") + "/models/" + model + ":generateContent"
}

// Chat sends a generateContent request.
func (p *GeminiProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	headers := map[string]string{"x-goog-api-key": p.config.APIKey}

	var gResp geminiResponse
	if err := postJSON(ctx, p.client, p.config.ID, p.generateURL(req.Model), headers, convertGeminiRequest(req), &gResp); err != nil {
		return nil, err
	}

	if len(gResp.Candidates) == 0 {
		return nil, emptyResponse(p.config.ID, "no candidates")
	}
	candidate := gResp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	p.logger.Debug("gemini generation",
		zap.String("model", req.Model),
		zap.Int("total_tokens", gResp.UsageMetadata.TotalTokenCount))

	return &ChatResponse{
		Model:        gResp.ModelVersion,
		Content:      text.String(),
		FinishReason: candidate.FinishReason,
		Usage: Usage{
			PromptTokens:     gResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: gResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gResp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// Gemini-specific request/response types
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	FrequencyPenalty *float64 `json:"frequencyPenalty,omitempty"`
	PresencePenalty  *float64 `json:"presencePenalty,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// convertGeminiRequest maps system messages to systemInstruction and the
// assistant role to "model".
func convertGeminiRequest(req *ChatRequest) *geminiRequest {
	gr := &geminiRequest{
		GenerationConfig: geminiGenerationConfig{
			Temperature:      req.Temperature,
			MaxOutputTokens:  req.MaxTokens,
			TopP:             req.TopP,
			FrequencyPenalty: req.FrequencyPenalty,
			PresencePenalty:  req.PresencePenalty,
		},
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			if gr.SystemInstruction == nil {
				gr.SystemInstruction = &geminiContent{}
			}
			gr.SystemInstruction.Parts = append(gr.SystemInstruction.Parts, geminiPart{Text: m.Content})
		case RoleAssistant:
			gr.Contents = append(gr.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			gr.Contents = append(gr.Contents, geminiContent{Role: RoleUser, Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	return gr
}
