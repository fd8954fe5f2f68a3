package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File names read by LoadDir.
const (
	ModelsFile    = "models.json"
	TemplatesFile = "templates.json"
)

// maxShapeDepth bounds how far parseVector descends into wrapper objects.
const maxShapeDepth = 4

// LoadDir reads models.json and templates.json from dir. A missing file
// yields an empty section rather than an error.
func LoadDir(dir string) (*Corpus, error) {
	c := &Corpus{}

	data, err := readOptional(filepath.Join(dir, ModelsFile))
	if err != nil {
		return nil, err
	}
	if data != nil {
		if c.Models, err = ParseModels(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ModelsFile, err)
		}
	}

	data, err = readOptional(filepath.Join(dir, TemplatesFile))
	if err != nil {
		return nil, err
	}
	if data != nil {
		if c.Templates, err = ParseTemplates(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", TemplatesFile, err)
		}
	}
	return c, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read corpus file %s: %w", path, err)
	}
	return data, nil
}

// ParseModels decodes a models mapping, keeping the object's key order.
func ParseModels(data []byte) ([]ModelEmbeddings, error) {
	var models []ModelEmbeddings
	err := decodeOrdered(data, func(key string, fields map[string]json.RawMessage) error {
		m := ModelEmbeddings{Key: key, FileName: key}
		if err := stringField(fields, "fileName", &m.FileName); err != nil {
			return fmt.Errorf("model %s: %w", key, err)
		}
		if err := stringField(fields, "content", &m.Content); err != nil {
			return fmt.Errorf("model %s: %w", key, err)
		}
		m.Embeddings = collectEmbeddings(fields)
		models = append(models, m)
		return nil
	})
	return models, err
}

// ParseTemplates decodes a templates mapping, keeping the object's key order.
func ParseTemplates(data []byte) ([]TemplateEmbeddings, error) {
	var templates []TemplateEmbeddings
	err := decodeOrdered(data, func(key string, fields map[string]json.RawMessage) error {
		t := TemplateEmbeddings{Name: key}
		for name, dst := range map[string]*string{"grammar": &t.Grammar, "sample": &t.Sample, "model": &t.Model} {
			if err := stringField(fields, name, dst); err != nil {
				return fmt.Errorf("template %s: %w", key, err)
			}
		}
		t.Embeddings = collectEmbeddings(fields)
		templates = append(templates, t)
		return nil
	})
	return templates, err
}

// decodeOrdered walks the top-level object of data in document order.
func decodeOrdered(data []byte, fn func(key string, fields map[string]json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		var fields map[string]json.RawMessage
		if err := dec.Decode(&fields); err != nil {
			return fmt.Errorf("entry %s: %w", key, err)
		}
		if err := fn(key, fields); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func stringField(fields map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	return nil
}

var reservedFields = map[string]bool{
	"key": true, "name": true, "fileName": true, "content": true,
	"grammar": true, "sample": true, "model": true,
}

// collectEmbeddings gathers per-provider vectors. Providers appear either
// as top-level keys or inside an "embeddings" object; each value is
// normalized by parseVector.
func collectEmbeddings(fields map[string]json.RawMessage) Embeddings {
	out := Embeddings{}
	if raw, ok := fields["embeddings"]; ok {
		var nested map[string]json.RawMessage
		if json.Unmarshal(raw, &nested) == nil {
			for p, v := range nested {
				if vec, ok := parseVector(v, 0); ok {
					out[p] = vec
				}
			}
		}
	}
	for name, raw := range fields {
		if reservedFields[name] || name == "embeddings" {
			continue
		}
		if vec, ok := parseVector(raw, 0); ok {
			out[name] = vec
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseVector accepts a bare array or an array wrapped in "embeddings",
// "embedding" or "values" objects.
func parseVector(raw json.RawMessage, depth int) ([]float32, bool) {
	if depth > maxShapeDepth {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err == nil {
		return vec, len(vec) > 0
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}
	for _, k := range []string{"embeddings", "embedding", "values"} {
		if inner, ok := wrapper[k]; ok {
			return parseVector(inner, depth+1)
		}
	}
	return nil, false
}
