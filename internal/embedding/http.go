package embedding

import (
	"context"
	"net/http"

	"github.com/nidhogg/concerto-copilot/internal/llmerr"
	"github.com/nidhogg/concerto-copilot/internal/provider"
)

func postJSON(ctx context.Context, client *http.Client, providerID, url string, headers map[string]string, body, out any) error {
	return provider.PostJSON(ctx, client, providerID, url, headers, body, out, llmerr.AsEmbedding)
}

func malformed(providerID, what string) error {
	return llmerr.AsEmbedding(llmerr.Processing(providerID, "malformed response: "+what, nil))
}
