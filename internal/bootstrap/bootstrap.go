package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
	"github.com/kirillkom/green-loan-compliance/internal/core/usecase"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/extractor/document"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/queue/nats"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/resilience"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/storage/localfs"
)

// App is the wiring shared by the API and worker processes.
type App struct {
	Config config.Config

	Queue      ports.MessageQueue
	Ingest     *usecase.IngestLoanUseCase
	Process    *usecase.ProcessLoanUseCase
	Index      *usecase.IndexUseCase
	Extraction *usecase.ExtractionUseCase
	Assessment *usecase.AssessmentUseCase

	closeFn func()
}

// New connects Postgres, NATS and the model backend. observer may be nil.
func New(ctx context.Context, cfg config.Config, observer resilience.Observer) (*App, error) {
	executor := resilience.NewExecutor(cfg.Resilience())
	if observer != nil {
		executor = executor.WithObserver(observer)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	jobs := postgres.NewJobRepository(db)
	results := postgres.NewAssessmentRepository(db, cfg.SQLDebug)
	if err := results.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure assessment schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	closeFn := func() {
		queue.Close()
		_ = db.Close()
	}

	models, err := NewModels(cfg, executor)
	if err != nil {
		closeFn()
		return nil, err
	}
	retrieval, err := NewRetrieval(ctx, cfg, models)
	if err != nil {
		closeFn()
		return nil, err
	}
	assessment, err := NewAssessment(cfg, results)
	if err != nil {
		closeFn()
		return nil, err
	}

	return &App{
		Config: cfg,
		Queue:  queue,

		Ingest:     usecase.NewIngestLoanUseCase(jobs, storage, queue),
		Process:    usecase.NewProcessLoanUseCase(jobs, storage, document.NewExtractor(storage), retrieval.Index, retrieval.Extraction, assessment),
		Index:      retrieval.Index,
		Extraction: retrieval.Extraction,
		Assessment: assessment,

		closeFn: closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
