// Package langchain adapts tmc/langchaingo models to the embedding, reader
// and generator ports, for OpenAI-compatible endpoints or Ollama.
package langchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/llm"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/resilience"
)

type Config struct {
	Provider   string // "openai" or "ollama"
	BaseURL    string
	APIKey     string
	GenModel   string
	EmbedModel string
}

// Models bundles the ports backed by one provider.
type Models struct {
	Embedder  *Embedder
	Reader    *Reader
	Generator *Generator
}

func New(cfg Config, executor *resilience.Executor) (*Models, error) {
	genLLM, err := newModel(cfg, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("init generation model: %w", err)
	}
	embedLLM, err := newModel(cfg, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("init embedding model: %w", err)
	}
	client, ok := embedLLM.(embeddings.EmbedderClient)
	if !ok {
		return nil, fmt.Errorf("provider %q cannot embed", cfg.Provider)
	}
	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	gen := NewGenerator(genLLM, executor)
	return &Models{
		Embedder:  NewEmbedder(embedder, executor),
		Reader:    NewReader(gen),
		Generator: gen,
	}, nil
}

func newModel(cfg Config, model string) (llms.Model, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.APIKey, "Bearer ")),
			openai.WithModel(model),
			openai.WithEmbeddingModel(model),
		)
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(model),
		)
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "langchain provider", fmt.Errorf("unknown provider %q", cfg.Provider))
	}
}

type Embedder struct {
	inner    embeddings.Embedder
	executor *resilience.Executor
}

func NewEmbedder(inner embeddings.Embedder, executor *resilience.Executor) *Embedder {
	return &Embedder{inner: inner, executor: executor}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := resilience.Call(ctx, e.executor, "langchain.embed", func(ctx context.Context) ([][]float32, error) {
		return e.inner.EmbedDocuments(ctx, texts)
	}, classify)
	if err != nil {
		return nil, wrap("langchain embed", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("langchain embed returned %d vectors for %d inputs", len(vectors), len(texts))
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := resilience.Call(ctx, e.executor, "langchain.embed", func(ctx context.Context) ([]float32, error) {
		return e.inner.EmbedQuery(ctx, text)
	}, classify)
	if err != nil {
		return nil, wrap("langchain embed", err)
	}
	return vector, nil
}

type Generator struct {
	model    llms.Model
	executor *resilience.Executor
}

func NewGenerator(model llms.Model, executor *resilience.Executor) *Generator {
	return &Generator{model: model, executor: executor}
}

func (g *Generator) GenerateFromPrompt(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt)
}

func (g *Generator) generate(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	out, err := resilience.Call(ctx, g.executor, "langchain.generate", func(ctx context.Context) (string, error) {
		return llms.GenerateFromSinglePrompt(ctx, g.model, prompt, options...)
	}, classify)
	if err != nil {
		return "", wrap("langchain generate", err)
	}
	return strings.TrimSpace(out), nil
}

type Reader struct {
	gen *Generator
}

func NewReader(gen *Generator) *Reader {
	return &Reader{gen: gen}
}

func (r *Reader) ReadSpan(ctx context.Context, question, contextText string) (domain.Span, error) {
	raw, err := r.gen.generate(ctx, llm.SpanPrompt(question, contextText), llms.WithTemperature(0), llms.WithJSONMode())
	if err != nil {
		return domain.Span{}, err
	}
	return llm.ParseSpan(raw, contextText)
}

func classify(err error) resilience.ErrorClassification {
	return resilience.ClassifyTransport(err)
}

func wrap(operation string, err error) error {
	return resilience.MarkTemporary(operation, err, classify)
}
