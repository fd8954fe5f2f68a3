// Package embedcache remembers query embeddings so repeated requests over
// the same context documents skip the provider call.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores embeddings by key. Implementations must be safe for
// concurrent use. A failed or missing lookup is a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, vec []float32)
}

// Key derives the cache key for text embedded by providerID with model.
func Key(providerID, model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return providerID + ":" + model + ":" + hex.EncodeToString(sum[:])
}
