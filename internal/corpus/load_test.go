package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

const modelsJSON = `{
  "zeta.cto": {
    "fileName": "zeta.cto",
    "content": "asset Zeta {}",
    "openai": { "embeddings": [0.1, 0.2] },
    "gemini": { "embeddings": { "embedding": [1, 2, 3] } }
  },
  "alpha.cto": {
    "content": "participant Alpha {}",
    "embeddings": { "openai": [0.3, 0.4], "mistral": { "embedding": { "values": [5] } } }
  },
  "bare.cto": { "fileName": "bare.cto", "content": "enum Bare {}" }
}`

func TestParseModels_OrderAndShapes(t *testing.T) {
	models, err := ParseModels([]byte(modelsJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 3 {
		t.Fatalf("got %d models, want 3", len(models))
	}
	wantKeys := []string{"zeta.cto", "alpha.cto", "bare.cto"}
	for i, k := range wantKeys {
		if models[i].Key != k {
			t.Errorf("models[%d].Key = %q, want %q", i, models[i].Key, k)
		}
	}

	if v, ok := models[0].EmbeddingFor("openai"); !ok || len(v) != 2 {
		t.Errorf("zeta openai embedding = %v, %v", v, ok)
	}
	if v, ok := models[0].EmbeddingFor("gemini"); !ok || len(v) != 3 {
		t.Errorf("zeta gemini embedding = %v, %v", v, ok)
	}
	if models[1].FileName != "alpha.cto" {
		t.Errorf("file name should default to key, got %q", models[1].FileName)
	}
	if v, ok := models[1].EmbeddingFor("mistral"); !ok || v[0] != 5 {
		t.Errorf("alpha mistral embedding = %v, %v", v, ok)
	}
	if _, ok := models[2].EmbeddingFor("openai"); ok {
		t.Error("bare model should have no embeddings")
	}
}

func TestParseTemplates(t *testing.T) {
	data := `{
	  "helloworld": {
	    "grammar": "Hello {{name}}.",
	    "sample": "Hello Fred.",
	    "model": "import org.x.Y from https://x\nasset Hello {}",
	    "openai": { "embeddings": [] },
	    "gemini": [0.5, 0.5]
	  }
	}`
	templates, err := ParseTemplates([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("got %d templates", len(templates))
	}
	tpl := templates[0]
	if tpl.Name != "helloworld" || tpl.Sample != "Hello Fred." || tpl.Model == "" {
		t.Errorf("unexpected template %+v", tpl)
	}
	if _, ok := tpl.EmbeddingFor("openai"); ok {
		t.Error("empty openai embedding should count as missing")
	}
	if _, ok := tpl.EmbeddingFor("gemini"); !ok {
		t.Error("expected gemini embedding")
	}
}

func TestParseModels_NotObject(t *testing.T) {
	if _, err := ParseModels([]byte(`[1,2]`)); err == nil {
		t.Error("expected error for non-object corpus")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ModelsFile), []byte(modelsJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Models) != 3 {
		t.Errorf("got %d models", len(c.Models))
	}
	if len(c.Templates) != 0 {
		t.Errorf("missing templates file should give empty section, got %d", len(c.Templates))
	}
}

func TestLoadDir_Missing(t *testing.T) {
	c, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Models) != 0 || len(c.Templates) != 0 {
		t.Errorf("expected empty corpus, got %+v", c)
	}
}
