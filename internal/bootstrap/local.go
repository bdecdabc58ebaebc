package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/core/usecase"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/extractor/document"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/queue/inline"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/repository/sqlite"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/resilience"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/storage/localfs"
)

// Local is the single-process wiring used by the CLI: sqlite instead of
// Postgres and jobs processed inline instead of through NATS.
type Local struct {
	Config config.Config

	Ingest     *usecase.IngestLoanUseCase
	Index      *usecase.IndexUseCase
	Extraction *usecase.ExtractionUseCase
	Assessment *usecase.AssessmentUseCase

	store *sqlite.Store
}

func NewLocal(ctx context.Context, cfg config.Config) (*Local, error) {
	store, err := sqlite.Open(cfg.SQLiteDir)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	models, err := NewModels(cfg, resilience.NewExecutor(cfg.Resilience()))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	retrieval, err := NewRetrieval(ctx, cfg, models)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	assessment, err := NewAssessment(cfg, store.Assessments())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	queue := inline.New()
	process := usecase.NewProcessLoanUseCase(store.Jobs(), storage, document.NewExtractor(storage), retrieval.Index, retrieval.Extraction, assessment)
	if err := queue.SubscribeJobSubmitted(ctx, process.ProcessJob); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Local{
		Config:     cfg,
		Ingest:     usecase.NewIngestLoanUseCase(store.Jobs(), storage, queue),
		Index:      retrieval.Index,
		Extraction: retrieval.Extraction,
		Assessment: assessment,
		store:      store,
	}, nil
}

func (l *Local) Close() error {
	return l.store.Close()
}
