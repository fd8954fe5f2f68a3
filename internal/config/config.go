package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nidhogg/concerto-copilot/internal/llm"
	"github.com/nidhogg/concerto-copilot/internal/namespace"
)

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig     `json:"server" toml:"server"`
	Corpus    CorpusConfig     `json:"corpus" toml:"corpus"`
	Cache     CacheConfig      `json:"cache" toml:"cache"`
	Registry  RegistryConfig   `json:"registry" toml:"registry"`
	Retrieval RetrievalConfig  `json:"retrieval" toml:"retrieval"`
	Providers []ProviderConfig `json:"providers" toml:"providers"`
}

type ServerConfig struct {
	Port     int    `json:"port" toml:"port"`
	LogLevel string `json:"log_level" toml:"log_level"`
}

// CorpusConfig selects where the precomputed corpus is read from. A
// PostgresDSN takes precedence over Dir.
type CorpusConfig struct {
	Dir           string `json:"dir" toml:"dir"`
	PostgresDSN   string `json:"postgres_dsn" toml:"postgres_dsn"`
	MigrationsDir string `json:"migrations_dir" toml:"migrations_dir"`
}

// CacheConfig configures the query embedding cache. An empty RedisURL keeps
// the cache in memory.
type CacheConfig struct {
	RedisURL   string `json:"redis_url" toml:"redis_url"`
	TTLMinutes int    `json:"ttl_minutes" toml:"ttl_minutes"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

type RegistryConfig struct {
	BaseURL string `json:"base_url" toml:"base_url"`
}

type RetrievalConfig struct {
	ModelTopN    int `json:"model_top_n" toml:"model_top_n"`
	TemplateTopN int `json:"template_top_n" toml:"template_top_n"`
	GrammarTopN  int `json:"grammar_top_n" toml:"grammar_top_n"`
}

// ProviderConfig holds server-side defaults for one provider. They fill
// fields a request leaves empty.
type ProviderConfig struct {
	ID             string `json:"id" toml:"id"`
	Endpoint       string `json:"endpoint" toml:"endpoint"`
	EmbeddingURL   string `json:"embedding_url" toml:"embedding_url"`
	APIKey         string `json:"api_key" toml:"api_key"`
	Model          string `json:"model" toml:"model"`
	EmbeddingModel string `json:"embedding_model" toml:"embedding_model"`
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON or TOML config file (by extension) and substitutes
// environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	resolved := expandEnv(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(resolved, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Defaults()
	return &cfg, nil
}

// expandEnv substitutes ${VAR} and ${VAR:default} with environment values.
func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[2]
	})
}

// Defaults fills zero values.
func (c *Config) Defaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Corpus.Dir == "" {
		c.Corpus.Dir = "data"
	}
	if c.Corpus.MigrationsDir == "" {
		c.Corpus.MigrationsDir = "migrations"
	}
	if c.Cache.TTLMinutes <= 0 {
		c.Cache.TTLMinutes = 60
	}
	if c.Registry.BaseURL == "" {
		c.Registry.BaseURL = namespace.DefaultRegistryURL
	}
	if c.Retrieval.ModelTopN == 0 {
		c.Retrieval.ModelTopN = 4
	}
	if c.Retrieval.TemplateTopN == 0 {
		c.Retrieval.TemplateTopN = 4
	}
	if c.Retrieval.GrammarTopN == 0 {
		c.Retrieval.GrammarTopN = 3
	}
}

// Provider returns the defaults configured for id.
func (c *Config) Provider(id string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// Resolve fills empty fields of a request's model config from the
// provider's configured defaults.
func (c *Config) Resolve(mc llm.ModelConfig) llm.ModelConfig {
	p, ok := c.Provider(mc.Provider)
	if !ok {
		return mc
	}
	if mc.Endpoint == "" {
		mc.Endpoint = p.Endpoint
	}
	if mc.EmbeddingURL == "" {
		mc.EmbeddingURL = p.EmbeddingURL
	}
	if mc.AccessToken == "" {
		mc.AccessToken = p.APIKey
	}
	if mc.Model == "" {
		mc.Model = p.Model
	}
	if mc.EmbeddingModel == "" {
		mc.EmbeddingModel = p.EmbeddingModel
	}
	return mc
}
