package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nidhogg/concerto-copilot/internal/llmerr"
	"github.com/nidhogg/concerto-copilot/internal/provider"
)

func TestAPIProviderEmbed(t *testing.T) {
	// APIProvider posts to endpoint+"/embeddings", so we use a mux.
	var got apiRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/embeddings", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(apiResponse{
			Data: []apiEmbeddingData{
				{Embedding: []float32{0.1, 0.2, 0.3}},
				{Embedding: []float32{9, 9}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewAPIProvider(Config{Provider: provider.OpenAI, Endpoint: srv.URL})

	vec, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("got dimension %d, want 3", len(vec))
	}
	if len(got.Input) != 1 || got.Input[0] != "hello" {
		t.Errorf("got input %v, want single-element array", got.Input)
	}
	if got.Model != "text-embedding-3-small" {
		t.Errorf("got model %q, want default", got.Model)
	}
}

func TestAPIProviderEmbed_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewAPIProvider(Config{Provider: provider.Mistral, Endpoint: srv.URL + "/v1/embeddings"})
	_, err := p.Embed(context.Background(), "x")

	var ee *llmerr.EmbeddingError
	if !errors.As(err, &ee) {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
	if ee.Cause != llmerr.CauseStatus || ee.StatusCode != http.StatusUnauthorized || ee.Message != "bad key" {
		t.Errorf("unexpected detail %+v", ee.Detail)
	}
}

func TestAPIProviderEmbed_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	p := NewAPIProvider(Config{Endpoint: srv.URL})
	_, err := p.Embed(context.Background(), "x")
	var ee *llmerr.EmbeddingError
	if !errors.As(err, &ee) || ee.Cause != llmerr.CauseProcessing {
		t.Fatalf("expected processing EmbeddingError, got %v", err)
	}
}

func TestEmbeddingsURL(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"https://api.openai.com/v1", "https://api.openai.com/v1/embeddings"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1/embeddings"},
		{"https://api.openai.com/v1/embeddings", "https://api.openai.com/v1/embeddings"},
	}
	for _, tt := range tests {
		if got := embeddingsURL(tt.endpoint); got != tt.want {
			t.Errorf("embeddingsURL(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestGeminiEmbed(t *testing.T) {
	var got geminiEmbedRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/models/text-embedding-004:embedContent", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"embedding":{"values":[1,0,0]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewGeminiProvider(Config{Endpoint: srv.URL, APIKey: "g"})
	vec, err := p.Embed(context.Background(), "sample")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Errorf("got %v", vec)
	}
	if got.Model != "models/text-embedding-004" || got.Content.Parts[0].Text != "sample" {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestNew_Unsupported(t *testing.T) {
	if _, err := New(Config{Provider: provider.Anthropic}); err == nil {
		t.Error("expected error for provider without embeddings")
	}
	p, err := New(Config{Provider: provider.Ollama})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Model() != "nomic-embed-text" {
		t.Errorf("got model %q", p.Model())
	}
}
