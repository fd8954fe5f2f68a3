package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nidhogg/concerto-copilot/internal/llmerr"
)

func TestPostJSON_WrapSelectsErrorKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	var out struct{}
	err := PostJSON(context.Background(), srv.Client(), OpenAI, srv.URL, nil, map[string]string{}, &out, llmerr.AsEmbedding)
	if !errors.Is(err, llmerr.ErrEmbedding) || errors.Is(err, llmerr.ErrGeneration) {
		t.Fatalf("expected embedding error, got %v", err)
	}
	d, _ := llmerr.DetailOf(err)
	if d.Cause != llmerr.CauseStatus || d.StatusCode != http.StatusUnauthorized || d.Message != "invalid api key" {
		t.Errorf("unexpected detail %+v", d)
	}

	err = postJSON(context.Background(), srv.Client(), OpenAI, srv.URL, nil, map[string]string{}, &out)
	if !errors.Is(err, llmerr.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := errorMessage([]byte(`{"error":{"message":"quota"}}`)); got != "quota" {
		t.Errorf("got %q", got)
	}
	if got := errorMessage([]byte("  upstream down\n")); got != "upstream down" {
		t.Errorf("raw fallback: got %q", got)
	}
}
