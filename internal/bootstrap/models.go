package bootstrap

import (
	"fmt"

	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/llm"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/llm/langchain"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/resilience"
)

// Models are the model-backed ports. Generator is nil when generative
// answers are disabled.
type Models struct {
	Embedder  ports.Embedder
	Reader    ports.ExtractiveReader
	Generator ports.AnswerGenerator
}

func NewModels(cfg config.Config, executor *resilience.Executor) (Models, error) {
	var (
		embedder  ports.Embedder
		reader    ports.ExtractiveReader
		generator ports.AnswerGenerator
	)

	switch cfg.ModelProvider {
	case config.ProviderOllama:
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
		embedder = ollama.NewEmbedder(client)
		reader = ollama.NewReader(client)
		generator = ollama.NewGenerator(client)
	case config.ProviderOpenAI, config.ProviderLangchain:
		lc := langchain.Config{
			Provider:   "openai",
			BaseURL:    cfg.OpenAIBaseURL,
			APIKey:     cfg.OpenAIAPIKey,
			GenModel:   cfg.OpenAIGenModel,
			EmbedModel: cfg.OpenAIEmbedModel,
		}
		if cfg.ModelProvider == config.ProviderLangchain {
			lc = langchain.Config{
				Provider:   "ollama",
				BaseURL:    cfg.OllamaURL,
				GenModel:   cfg.OllamaGenModel,
				EmbedModel: cfg.OllamaEmbedModel,
			}
		}
		models, err := langchain.New(lc, executor)
		if err != nil {
			return Models{}, fmt.Errorf("init %s models: %w", cfg.ModelProvider, err)
		}
		embedder = models.Embedder
		reader = models.Reader
		generator = models.Generator
	default:
		return Models{}, fmt.Errorf("unknown model provider %q", cfg.ModelProvider)
	}

	out := Models{
		Embedder: llm.NewLazyEmbedder(embedder),
		Reader:   reader,
	}
	if cfg.GenerativeEnabled {
		out.Generator = generator
	}
	return out, nil
}
