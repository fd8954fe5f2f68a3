//go:build integration

package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"
)

// startRedis starts a Redis testcontainer and returns its URL.
func startRedis(t *testing.T, ctx context.Context) string {
	t.Helper()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() { testcontainers.TerminateContainer(container) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}
	return "redis://" + endpoint
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	r, err := NewRedis(ctx, startRedis(t, ctx), time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("new redis cache: %v", err)
	}
	defer r.Close()

	key := Key("openai", "text-embedding-3-small", "grammar sample")
	if _, ok := r.Get(ctx, key); ok {
		t.Fatal("expected miss")
	}
	r.Set(ctx, key, []float32{0.25, -1})
	vec, ok := r.Get(ctx, key)
	if !ok || len(vec) != 2 || vec[0] != 0.25 {
		t.Errorf("got %v, %v", vec, ok)
	}
}
