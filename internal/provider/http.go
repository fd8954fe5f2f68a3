package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nidhogg/concerto-copilot/internal/llmerr"
)

// PostJSON sends body to url and decodes a 200 answer into out. Every
// failure is classified by cause and handed to wrap, which picks the error
// kind (generation or embedding).
func PostJSON(ctx context.Context, client *http.Client, providerID, url string, headers map[string]string, body, out any, wrap func(llmerr.Detail) error) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return wrap(llmerr.Processing(providerID, "marshal request", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return wrap(llmerr.Processing(providerID, "create request", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return wrap(llmerr.Transport(providerID, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return wrap(llmerr.Status(providerID, resp.StatusCode, errorMessage(respBody)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrap(llmerr.Processing(providerID, "decode response", err))
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, providerID, url string, headers map[string]string, body, out any) error {
	return PostJSON(ctx, client, providerID, url, headers, body, out, llmerr.AsGeneration)
}

// errorMessage pulls error.message out of an OpenAI/Gemini/Anthropic style
// error body, falling back to the raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func emptyResponse(providerID, what string) error {
	return llmerr.AsGeneration(llmerr.Processing(providerID, fmt.Sprintf("malformed response: %s", what), nil))
}
