package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
)

type IndexUseCase struct {
	chunker ports.Chunker
	index   ports.ChunkIndex
}

func NewIndexUseCase(chunker ports.Chunker, index ports.ChunkIndex) *IndexUseCase {
	return &IndexUseCase{
		chunker: chunker,
		index:   index,
	}
}

// IngestText cleans, chunks and indexes one document's text for a loan.
func (uc *IndexUseCase) IngestText(ctx context.Context, loanID, text, source, docType string) (int, error) {
	chunks := uc.chunker.Chunk(CleanText(text), source, docType)
	if len(chunks) == 0 {
		return 0, nil
	}
	return uc.Ingest(ctx, loanID, chunks)
}

func (uc *IndexUseCase) Ingest(ctx context.Context, loanID string, chunks []domain.DocumentChunk) (int, error) {
	if err := checkLoanID("ingest chunks", loanID); err != nil {
		return 0, err
	}
	added, err := uc.index.Add(ctx, loanID, chunks)
	if err != nil {
		return 0, fmt.Errorf("add chunks to loan index: %w", err)
	}
	return added, nil
}

func (uc *IndexUseCase) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchHit, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("query text is required"))
	}
	if query.LoanID != "" {
		if err := checkLoanID("search", query.LoanID); err != nil {
			return nil, err
		}
	}
	if query.K <= 0 {
		query.K = 5
	}
	hits, err := uc.index.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search loan index: %w", err)
	}
	return hits, nil
}

func (uc *IndexUseCase) ClearLoan(ctx context.Context, loanID string) (int, error) {
	if err := checkLoanID("clear loan", loanID); err != nil {
		return 0, err
	}
	return uc.index.Clear(ctx, loanID)
}

func (uc *IndexUseCase) RemoveSource(ctx context.Context, loanID, source string) (int, error) {
	if err := checkLoanID("remove source", loanID); err != nil {
		return 0, err
	}
	if strings.TrimSpace(source) == "" {
		return 0, domain.WrapError(domain.ErrInvalidInput, "remove source", fmt.Errorf("source is required"))
	}
	return uc.index.RemoveSource(ctx, loanID, source)
}

func (uc *IndexUseCase) Stats(loanID string) domain.LoanIndexStats {
	return uc.index.Stats(loanID)
}

func (uc *IndexUseCase) GlobalStats() domain.IndexStats {
	return uc.index.GlobalStats()
}

// CleanText collapses runs of whitespace and drops NUL bytes left over by
// binary extractors.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.Join(strings.Fields(text), " ")
}
