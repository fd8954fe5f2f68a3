// Package corpus holds the precomputed models and templates that prompt
// retrieval ranks against. A Corpus is read-only once loaded.
package corpus

// Embeddings maps a provider identity to the vector that provider produced.
// Vectors from different providers live in different spaces.
type Embeddings map[string][]float32

// For returns the provider's vector, reporting false when it is absent or empty.
func (e Embeddings) For(providerID string) ([]float32, bool) {
	v, ok := e[providerID]
	if !ok || len(v) == 0 {
		return nil, false
	}
	return v, true
}

// ModelEmbeddings is one model file of the corpus.
type ModelEmbeddings struct {
	Key        string     `json:"key"`
	FileName   string     `json:"fileName"`
	Content    string     `json:"content"`
	Embeddings Embeddings `json:"embeddings,omitempty"`
}

// EmbeddingFor returns the model content's embedding for providerID.
func (m ModelEmbeddings) EmbeddingFor(providerID string) ([]float32, bool) {
	return m.Embeddings.For(providerID)
}

// TemplateEmbeddings is a named template: its grammar (embedded per
// provider), a sample rendered from it and optionally its model.
type TemplateEmbeddings struct {
	Name       string     `json:"name"`
	Grammar    string     `json:"grammar"`
	Sample     string     `json:"sample"`
	Model      string     `json:"model,omitempty"`
	Embeddings Embeddings `json:"embeddings,omitempty"`
}

// EmbeddingFor returns the grammar's embedding for providerID.
func (t TemplateEmbeddings) EmbeddingFor(providerID string) ([]float32, bool) {
	return t.Embeddings.For(providerID)
}

// Corpus is the ordered collection of models and templates. Slice order is
// the load order and breaks ranking ties.
type Corpus struct {
	Models    []ModelEmbeddings
	Templates []TemplateEmbeddings
}
