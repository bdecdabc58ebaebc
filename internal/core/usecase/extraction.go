package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/extraction"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
)

const (
	answerNoDocuments = "No documents indexed for this loan."
	answerNoContent   = "No relevant content found in documents."
	answerUnclear     = "Could not extract a clear answer from the documents."
	answerNotFound    = "Not found in documents"
)

type ExtractionUseCase struct {
	index      ports.ChunkIndex
	reader     ports.ExtractiveReader
	generator  ports.AnswerGenerator
	thresholds extraction.Thresholds
	topK       int
}

// NewExtractionUseCase wires the answer pipeline. generator may be nil, in
// which case the generative step is skipped.
func NewExtractionUseCase(
	index ports.ChunkIndex,
	reader ports.ExtractiveReader,
	generator ports.AnswerGenerator,
	thresholds extraction.Thresholds,
	topK int,
) *ExtractionUseCase {
	if topK <= 0 {
		topK = extraction.DefaultTopK
	}
	return &ExtractionUseCase{
		index:      index,
		reader:     reader,
		generator:  generator,
		thresholds: thresholds,
		topK:       topK,
	}
}

func (uc *ExtractionUseCase) Answer(ctx context.Context, question, loanID string) (domain.ExtractionResult, error) {
	if err := checkLoanID("answer question", loanID); err != nil {
		return domain.ExtractionResult{}, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrInvalidInput, "answer question", fmt.Errorf("question is required"))
	}

	hits, err := uc.index.Search(ctx, domain.SearchQuery{Text: question, LoanID: loanID, K: uc.topK})
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("search loan index: %w", err)
	}

	result := domain.ExtractionResult{
		Question: question,
		Strategy: domain.StrategyNone,
		Sources:  extraction.Sources(hits),
	}
	if len(hits) == 0 {
		result.Answer = answerNoDocuments
		return result, nil
	}

	contextText := extraction.BuildContext(hits, extraction.ContextBudget)
	if contextText == "" {
		result.Answer = answerNoContent
		return result, nil
	}

	span, spanOK := uc.readSpan(ctx, question, contextText, loanID)
	if spanOK && span.Score > uc.thresholds.QAAccept {
		return uc.finish(result, span.Answer, span.Score, domain.StrategyExtractive, loanID), nil
	}

	if generated, ok := uc.generate(ctx, question, contextText, loanID); ok {
		return uc.finish(result, generated, uc.thresholds.Generated, domain.StrategyGenerative, loanID), nil
	}

	if spanOK {
		return uc.finish(result, span.Answer, span.Score, domain.StrategyFallback, loanID), nil
	}

	result.Answer = answerUnclear
	return result, nil
}

func (uc *ExtractionUseCase) finish(
	result domain.ExtractionResult,
	answer string,
	confidence float64,
	strategy domain.ExtractionStrategy,
	loanID string,
) domain.ExtractionResult {
	result.Answer = answer
	result.Confidence = clampUnit(confidence)
	result.Strategy = strategy
	slog.Debug("extraction_strategy",
		"loan_id", loanID,
		"strategy", string(strategy),
		"confidence", result.Confidence,
	)
	return result
}

// readSpan reports ok only for a span that passes the validity filter.
func (uc *ExtractionUseCase) readSpan(ctx context.Context, question, contextText, loanID string) (domain.Span, bool) {
	if uc.reader == nil {
		return domain.Span{}, false
	}
	span, err := uc.reader.ReadSpan(ctx, question, contextText)
	if err != nil {
		slog.Warn("extractive_reader_failed", "loan_id", loanID, "error", err.Error())
		return domain.Span{}, false
	}
	span.Answer = strings.TrimSpace(span.Answer)
	if !extraction.IsValidAnswer(span.Answer) {
		return domain.Span{}, false
	}
	return span, true
}

func (uc *ExtractionUseCase) generate(ctx context.Context, question, contextText, loanID string) (string, bool) {
	if uc.generator == nil {
		return "", false
	}
	raw, err := uc.generator.GenerateFromPrompt(ctx, extraction.GenerativePrompt(question, contextText))
	if err != nil {
		slog.Warn("answer_generator_failed", "loan_id", loanID, "error", err.Error())
		return "", false
	}
	answer := extraction.CleanGenerated(raw)
	if !extraction.IsValidAnswer(answer) || extraction.IsNotFound(answer) {
		return "", false
	}
	return answer, true
}

// ExtractAll answers the fixed question set for a loan.
func (uc *ExtractionUseCase) ExtractAll(ctx context.Context, loanID string) ([]domain.FieldExtraction, error) {
	if err := checkLoanID("extract fields", loanID); err != nil {
		return nil, err
	}
	out := make([]domain.FieldExtraction, 0, len(extraction.Questions))
	for _, question := range extraction.Questions {
		result, err := uc.Answer(ctx, question, loanID)
		if err != nil {
			return nil, fmt.Errorf("extract %q: %w", question, err)
		}
		found := extraction.IsFound(result.Answer, result.Confidence, uc.thresholds.Found)
		answer := result.Answer
		if !found {
			answer = answerNotFound
		}
		out = append(out, domain.FieldExtraction{
			Question:   question,
			Answer:     answer,
			Confidence: result.Confidence,
			Found:      found,
		})
	}
	return out, nil
}

// VerifyClaim checks whether the loan's documents support a claim.
func (uc *ExtractionUseCase) VerifyClaim(ctx context.Context, claim, loanID string) (domain.ClaimVerification, error) {
	if err := checkLoanID("verify claim", loanID); err != nil {
		return domain.ClaimVerification{}, err
	}
	claim = strings.TrimSpace(claim)
	if claim == "" {
		return domain.ClaimVerification{}, domain.WrapError(domain.ErrInvalidInput, "verify claim", fmt.Errorf("claim is required"))
	}

	hits, err := uc.index.Search(ctx, domain.SearchQuery{Text: claim, LoanID: loanID, K: extraction.ClaimPassages})
	if err != nil {
		return domain.ClaimVerification{}, fmt.Errorf("search loan index: %w", err)
	}

	verification := domain.ClaimVerification{
		Claim:      claim,
		Conclusion: domain.ClaimNoEvidence,
		Evidence:   extraction.Evidence(hits, 2),
	}
	if len(hits) == 0 {
		return verification, nil
	}

	passages := make([]string, 0, len(hits))
	for _, hit := range hits {
		passages = append(passages, hit.Text)
	}
	verification.Conclusion = domain.ClaimUnverified

	if uc.reader == nil {
		return verification, nil
	}
	span, err := uc.reader.ReadSpan(ctx, extraction.ClaimQuestion(claim), strings.Join(passages, " "))
	if err != nil {
		slog.Warn("extractive_reader_failed", "loan_id", loanID, "error", err.Error())
		return verification, nil
	}

	verification.Answer = strings.TrimSpace(span.Answer)
	verification.Confidence = clampUnit(span.Score)
	switch {
	case verification.Confidence >= uc.thresholds.ClaimVerified:
		verification.Verified = true
		verification.Conclusion = domain.ClaimVerified
	case verification.Confidence >= uc.thresholds.ClaimUnclear:
		verification.Conclusion = domain.ClaimUnclear
	}
	return verification, nil
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
