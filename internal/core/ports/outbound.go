package ports

import (
	"context"
	"io"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits document text into overlapping word windows.
type Chunker interface {
	Chunk(text, source, docType string) []domain.DocumentChunk
}

// ChunkIndex is the per-loan similarity index over document chunks.
type ChunkIndex interface {
	Add(ctx context.Context, loanID string, chunks []domain.DocumentChunk) (int, error)
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchHit, error)
	Clear(ctx context.Context, loanID string) (int, error)
	RemoveSource(ctx context.Context, loanID, source string) (int, error)
	Stats(loanID string) domain.LoanIndexStats
	GlobalStats() domain.IndexStats
}

// ExtractiveReader picks an answer span for a question out of a context.
type ExtractiveReader interface {
	ReadSpan(ctx context.Context, question, context string) (domain.Span, error)
}

// AnswerGenerator produces free-form answers from a prompt.
type AnswerGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
}

// ObjectStorage stores uploaded loan documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc domain.LoanDocument) (string, error)
}

// JobRepository persists ingestion job state.
type JobRepository interface {
	Create(ctx context.Context, job *domain.IngestionJob) error
	GetByID(ctx context.Context, id string) (*domain.IngestionJob, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, summary domain.JobSummary, documentsSkipped int) error
	MarkFailed(ctx context.Context, id string, errMessage string) error
}

// AssessmentRepository stores verdict snapshots per loan.
type AssessmentRepository interface {
	Save(ctx context.Context, assessment *domain.LoanAssessment) error
	Latest(ctx context.Context, loanID string) (*domain.LoanAssessment, error)
}

// MessageQueue publishes/consumes ingestion job events.
type MessageQueue interface {
	PublishJobSubmitted(ctx context.Context, event domain.JobEvent) error
	SubscribeJobSubmitted(ctx context.Context, handler func(context.Context, domain.JobEvent) error) error
}
