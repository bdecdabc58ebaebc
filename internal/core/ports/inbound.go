package ports

import (
	"context"
	"io"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

// LoanIngestor is the inbound contract for document upload and job submission.
type LoanIngestor interface {
	Upload(ctx context.Context, loanID, filename, docType string, body io.Reader) (*domain.LoanDocument, error)
	Submit(ctx context.Context, loanID string, fields domain.ProjectFields) (*domain.IngestionJob, error)
}

// JobReader is the inbound read model for ingestion jobs.
type JobReader interface {
	GetByID(ctx context.Context, id string) (*domain.IngestionJob, error)
}

// LoanProcessor runs one ingestion job to completion.
type LoanProcessor interface {
	ProcessJob(ctx context.Context, event domain.JobEvent) error
}

// IndexService is the inbound contract for chunk indexing and retrieval.
type IndexService interface {
	IngestText(ctx context.Context, loanID, text, source, docType string) (int, error)
	Ingest(ctx context.Context, loanID string, chunks []domain.DocumentChunk) (int, error)
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchHit, error)
	ClearLoan(ctx context.Context, loanID string) (int, error)
	RemoveSource(ctx context.Context, loanID, source string) (int, error)
	Stats(loanID string) domain.LoanIndexStats
	GlobalStats() domain.IndexStats
}

// ExtractionService answers questions from indexed loan documents.
type ExtractionService interface {
	Answer(ctx context.Context, question, loanID string) (domain.ExtractionResult, error)
	ExtractAll(ctx context.Context, loanID string) ([]domain.FieldExtraction, error)
	VerifyClaim(ctx context.Context, claim, loanID string) (domain.ClaimVerification, error)
}

// AssessmentService exposes the deterministic rules and scoring engines.
type AssessmentService interface {
	AssessGLPEligibility(fields domain.ProjectFields, text string) domain.GLPEligibilityResult
	AssessDNSH(fields domain.ProjectFields, text string) domain.DNSHSummary
	AssessCarbonLockin(fields domain.ProjectFields, text string) domain.CarbonLockinResult
	ValidateUseOfProceeds(useOfProceeds, sector string) domain.UseOfProceedsResult
	SectorRisk(sector string) domain.SectorRisk
	QuestionnaireScore(answers domain.Answers) float64
	Score(fields domain.ProjectFields, claims []domain.Claim, evidence []domain.Evidence, text string) domain.ESGScore
	CalibrateSPT(baseline float64, reduction string, baselineYear, targetYear int, sector string) *domain.SPTCalibration
	TransitionScore(fields domain.ProjectFields, text string) domain.TransitionScore
	CarbonMetrics(fields domain.ProjectFields) domain.CarbonMetrics
}
