// Package prompt turns editor documents and a request configuration into
// the chat messages sent to a provider, retrieving related models and
// templates from the corpus where the request type needs them.
package prompt

import (
	"context"
	"fmt"

	"github.com/nidhogg/concerto-copilot/internal/corpus"
	"github.com/nidhogg/concerto-copilot/internal/llm"
	"github.com/nidhogg/concerto-copilot/internal/namespace"
	"github.com/nidhogg/concerto-copilot/internal/provider"
	"github.com/nidhogg/concerto-copilot/internal/similarity"
	"go.uber.org/zap"
)

// Embedder produces the query embedding for retrieval.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, cfg llm.ModelConfig, text string) ([]float32, error)
}

// Options tunes retrieval.
type Options struct {
	RegistryURL  string
	ModelTopN    int
	TemplateTopN int
	GrammarTopN  int
}

// DefaultOptions returns the standard retrieval limits.
func DefaultOptions() Options {
	return Options{
		RegistryURL:  namespace.DefaultRegistryURL,
		ModelTopN:    4,
		TemplateTopN: 4,
		GrammarTopN:  3,
	}
}

// Assembler builds prompts. It is safe for concurrent use once constructed.
type Assembler struct {
	embedder Embedder
	corpus   *corpus.Corpus
	opts     Options
	logger   *zap.Logger
}

// NewAssembler creates an Assembler over a loaded corpus. A nil corpus is
// treated as empty.
func NewAssembler(embedder Embedder, c *corpus.Corpus, opts Options, logger *zap.Logger) *Assembler {
	if c == nil {
		c = &corpus.Corpus{}
	}
	if opts.RegistryURL == "" {
		opts.RegistryURL = namespace.DefaultRegistryURL
	}
	return &Assembler{embedder: embedder, corpus: c, opts: opts, logger: logger}
}

// Assemble renders the messages for one request.
func (a *Assembler) Assemble(ctx context.Context, docs Documents, pc PromptConfig, mc llm.ModelConfig) ([]provider.Message, error) {
	a.logger.Debug("assembling prompt",
		zap.String("request_type", string(pc.RequestType)),
		zap.String("provider", mc.Provider))

	switch pc.RequestType {
	case Inline:
		before, after := docs.Main.Split()
		return renderInline(pc.Language, before, after, pc.Instruction)
	case Fix:
		return renderFix(docs.Main.Content, pc.Instruction)
	case General:
		return renderGeneral(pc.Instruction)
	case Model:
		return a.assembleModel(ctx, docs, pc, mc)
	case Grammar:
		return a.assembleGrammar(ctx, docs, pc, mc)
	default:
		return nil, &UnsupportedRequestTypeError{RequestType: string(pc.RequestType)}
	}
}

func (a *Assembler) assembleModel(ctx context.Context, docs Documents, pc PromptConfig, mc llm.ModelConfig) ([]provider.Message, error) {
	query, err := EmbeddingQuery(docs, Model)
	if err != nil {
		return nil, err
	}
	vec, err := a.embedder.GenerateEmbeddings(ctx, mc, query)
	if err != nil {
		return nil, fmt.Errorf("embed model query: %w", err)
	}

	models := similarity.Items(similarity.Rank(vec, a.corpus.Models, mc.Provider, a.opts.ModelTopN))
	files := make([]namespace.File, 0, len(models))
	for _, m := range models {
		files = append(files, namespace.File{FileName: m.FileName, Content: m.Content})
	}
	imports := namespace.Imports(files, a.opts.RegistryURL)
	templates := similarity.Items(similarity.Rank(vec, a.corpus.Templates, mc.Provider, a.opts.TemplateTopN))

	a.logger.Debug("retrieved model context",
		zap.Int("models", len(models)),
		zap.Int("templates", len(templates)))

	grammar, _ := docs.Find(GrammarDoc)
	pkg, _ := docs.Find(PackageJSONDoc)
	return renderModel(modelData{
		Provider:    mc.Provider,
		Instruction: pc.Instruction,
		Grammar:     grammar.Content,
		PackageJSON: pkg.Content,
		Imports:     imports,
		Models:      models,
		Templates:   views(templates),
	})
}

func (a *Assembler) assembleGrammar(ctx context.Context, docs Documents, pc PromptConfig, mc llm.ModelConfig) ([]provider.Message, error) {
	query, err := EmbeddingQuery(docs, Grammar)
	if err != nil {
		return nil, err
	}
	vec, err := a.embedder.GenerateEmbeddings(ctx, mc, query)
	if err != nil {
		return nil, fmt.Errorf("embed grammar query: %w", err)
	}
	templates := similarity.Items(similarity.Rank(vec, a.corpus.Templates, mc.Provider, a.opts.GrammarTopN))

	a.logger.Debug("retrieved grammar context", zap.Int("templates", len(templates)))

	return renderGrammar(grammarData{
		Instruction: pc.Instruction,
		Sample:      query,
		Templates:   views(templates),
	})
}
