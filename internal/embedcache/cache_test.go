package embedcache

import (
	"context"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("openai", "m", "hello")
	if a != Key("openai", "m", "hello") {
		t.Error("key not deterministic")
	}
	if a == Key("gemini", "m", "hello") || a == Key("openai", "m2", "hello") || a == Key("openai", "m", "hello!") {
		t.Error("key should depend on provider, model and text")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatal("expected miss on empty cache")
	}
	m.Set(ctx, "k", []float32{1, 2})
	vec, ok := m.Get(ctx, "k")
	if !ok || len(vec) != 2 {
		t.Errorf("got %v, %v", vec, ok)
	}
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "k", []float32{1})
	time.Sleep(20 * time.Millisecond)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Error("expected entry to expire")
	}
}
