package httpadapter

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/kirillkom/green-loan-compliance/internal/config"
	"github.com/kirillkom/green-loan-compliance/internal/core/compliance"
	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/scoring"
	"github.com/kirillkom/green-loan-compliance/internal/core/usecase"
	"github.com/kirillkom/green-loan-compliance/internal/observability/metrics"
)

type ingestFake struct {
	uploaded []string
	fields   domain.ProjectFields
}

func (f *ingestFake) Upload(_ context.Context, loanID, filename, docType string, body io.Reader) (*domain.LoanDocument, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}
	f.uploaded = append(f.uploaded, filename)
	return &domain.LoanDocument{
		LoanID:     loanID,
		Filename:   filename,
		DocType:    docType,
		StorageKey: "loans/" + loanID + "/docs/" + docType + "/x_" + filename,
		Size:       int64(len(raw)),
		UploadedAt: time.Now().UTC(),
	}, nil
}

func (f *ingestFake) Submit(_ context.Context, loanID string, fields domain.ProjectFields) (*domain.IngestionJob, error) {
	f.fields = fields
	return &domain.IngestionJob{ID: "job-1", LoanID: loanID, Status: domain.JobQueued}, nil
}

type jobsFake struct{}

func (jobsFake) GetByID(_ context.Context, id string) (*domain.IngestionJob, error) {
	if id != "job-1" {
		return nil, domain.WrapError(domain.ErrNotFound, "get job", errors.New("id="+id))
	}
	return &domain.IngestionJob{ID: id, LoanID: "L1", Status: domain.JobCompleted}, nil
}

type indexFake struct {
	lastQuery domain.SearchQuery
}

func (f *indexFake) IngestText(context.Context, string, string, string, string) (int, error) {
	return 0, nil
}

func (f *indexFake) Ingest(context.Context, string, []domain.DocumentChunk) (int, error) {
	return 0, nil
}

func (f *indexFake) Search(_ context.Context, q domain.SearchQuery) ([]domain.SearchHit, error) {
	f.lastQuery = q
	return []domain.SearchHit{{Text: "Wind farm proceeds", Source: "a.pdf", Score: 0.9, LoanID: q.LoanID}}, nil
}

func (f *indexFake) ClearLoan(context.Context, string) (int, error) { return 7, nil }

func (f *indexFake) RemoveSource(_ context.Context, _, source string) (int, error) {
	if source == "a.pdf" {
		return 3, nil
	}
	return 0, nil
}

func (f *indexFake) Stats(loanID string) domain.LoanIndexStats {
	return domain.LoanIndexStats{LoanID: loanID, ChunkCount: 4, Sources: []string{"a.pdf"}}
}

func (f *indexFake) GlobalStats() domain.IndexStats {
	return domain.IndexStats{TotalChunks: 4, UniqueLoans: 1}
}

type extractionFake struct {
	err error
}

func (f extractionFake) Answer(_ context.Context, question, _ string) (domain.ExtractionResult, error) {
	if f.err != nil {
		return domain.ExtractionResult{}, f.err
	}
	return domain.ExtractionResult{
		Question:   question,
		Answer:     "Wind farm",
		Confidence: 0.82,
		Strategy:   domain.StrategyExtractive,
	}, nil
}

func (f extractionFake) ExtractAll(context.Context, string) ([]domain.FieldExtraction, error) {
	return []domain.FieldExtraction{{Question: "q", Answer: "a", Confidence: 0.8, Found: true}}, f.err
}

func (f extractionFake) VerifyClaim(_ context.Context, claim, _ string) (domain.ClaimVerification, error) {
	return domain.ClaimVerification{Claim: claim, Verified: true, Confidence: 0.7, Conclusion: domain.ClaimVerified}, f.err
}

type testRouter struct {
	*Router
	ingest *ingestFake
	index  *indexFake
}

func newTestRouter(cfg config.Config) testRouter {
	return newTestRouterWith(cfg, extractionFake{})
}

func newTestRouterWith(cfg config.Config, extraction extractionFake) testRouter {
	rules := compliance.NewEngine(compliance.DefaultTables())
	scorer := scoring.NewEngine(rules, scoring.DefaultWeights(), scoring.DefaultBenchmarks())
	ingest := &ingestFake{}
	index := &indexFake{}
	rt := NewRouter(cfg, Services{
		Ingest:     ingest,
		Jobs:       jobsFake{},
		Index:      index,
		Extraction: extraction,
		Assessment: usecase.NewAssessmentUseCase(rules, scorer, nil),
	}, metrics.NewHTTPServerMetrics(serviceName))
	return testRouter{Router: rt, ingest: ingest, index: index}
}
