package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/core/compliance"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
	"github.com/kirillkom/green-loan-compliance/internal/core/scoring"
	"github.com/kirillkom/green-loan-compliance/internal/core/usecase"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/chunking"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/vector/chromemindex"
)

// NewAssessment builds the rules and scoring engines from the optional
// override files. results may be nil.
func NewAssessment(cfg config.Config, results ports.AssessmentRepository) (*usecase.AssessmentUseCase, error) {
	tables, err := compliance.LoadTables(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	benchmarks, err := scoring.LoadBenchmarks(cfg.BenchmarkFile)
	if err != nil {
		return nil, fmt.Errorf("load benchmarks: %w", err)
	}
	rules := compliance.NewEngine(tables)
	return usecase.NewAssessmentUseCase(rules, scoring.NewEngine(rules, cfg.Weights(), benchmarks), results), nil
}

// Retrieval is the chunk index with the answer pipeline on top of it.
type Retrieval struct {
	Index      *usecase.IndexUseCase
	Extraction *usecase.ExtractionUseCase
}

func NewRetrieval(ctx context.Context, cfg config.Config, models Models) (Retrieval, error) {
	store, err := chromemindex.Open(ctx, cfg.VectorDir, models.Embedder)
	if err != nil {
		return Retrieval{}, fmt.Errorf("open vector index: %w", err)
	}
	return Retrieval{
		Index:      usecase.NewIndexUseCase(chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap), store),
		Extraction: usecase.NewExtractionUseCase(store, models.Reader, models.Generator, cfg.Thresholds(), cfg.TopK),
	}, nil
}
