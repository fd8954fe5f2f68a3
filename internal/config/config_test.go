package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nidhogg/concerto-copilot/internal/llm"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadJSONWithEnv(t *testing.T) {
	t.Setenv("COPILOT_TEST_KEY", "sk-test")
	path := writeFile(t, "copilot.json", `{
		"server": {"port": 9090},
		"providers": [{"id": "openai", "api_key": "${COPILOT_TEST_KEY}", "endpoint": "${COPILOT_UNSET:https://api.openai.com/v1}"}]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	p, ok := cfg.Provider("openai")
	if !ok {
		t.Fatal("openai provider missing")
	}
	if p.APIKey != "sk-test" {
		t.Errorf("api_key = %q", p.APIKey)
	}
	if p.Endpoint != "https://api.openai.com/v1" {
		t.Errorf("endpoint default not applied: %q", p.Endpoint)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "copilot.toml", `
[server]
log_level = "debug"

[retrieval]
model_top_n = 2

[[providers]]
id = "mistral"
model = "mistral-small-latest"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("log_level = %q", cfg.Server.LogLevel)
	}
	if cfg.Retrieval.ModelTopN != 2 || cfg.Retrieval.TemplateTopN != 4 || cfg.Retrieval.GrammarTopN != 3 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if p, ok := cfg.Provider("mistral"); !ok || p.Model != "mistral-small-latest" {
		t.Errorf("mistral provider = %+v, %v", p, ok)
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	if cfg.Server.Port != 8080 || cfg.Server.LogLevel != "info" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Registry.BaseURL != "https://models.accordproject.org" {
		t.Errorf("registry = %q", cfg.Registry.BaseURL)
	}
	if cfg.Cache.TTL().Minutes() != 60 {
		t.Errorf("ttl = %v", cfg.Cache.TTL())
	}
}

func TestDefaultsReplaceNegativeTTL(t *testing.T) {
	cfg := Config{Cache: CacheConfig{TTLMinutes: -5}}
	cfg.Defaults()
	if cfg.Cache.TTLMinutes != 60 {
		t.Errorf("ttl_minutes = %d, want 60", cfg.Cache.TTLMinutes)
	}
}

func TestResolve(t *testing.T) {
	cfg := &Config{Providers: []ProviderConfig{{ID: "openai", APIKey: "server-key", Model: "gpt-4o"}}}

	got := cfg.Resolve(llm.ModelConfig{Provider: "openai", Model: "gpt-4o-mini"})
	if got.AccessToken != "server-key" {
		t.Errorf("token not filled: %q", got.AccessToken)
	}
	if got.Model != "gpt-4o-mini" {
		t.Errorf("request model overwritten: %q", got.Model)
	}

	other := llm.ModelConfig{Provider: "gemini"}
	if cfg.Resolve(other) != other {
		t.Error("unconfigured provider should be unchanged")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error")
	}
}
