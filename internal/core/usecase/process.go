package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
)

// AssessmentRecorder evaluates and stores a loan's verdict snapshot.
type AssessmentRecorder interface {
	Record(ctx context.Context, loanID, jobID string, fields domain.ProjectFields, extractions []domain.FieldExtraction) (*domain.LoanAssessment, error)
}

type ProcessLoanUseCase struct {
	jobs       ports.JobRepository
	storage    ports.ObjectStorage
	extractor  ports.TextExtractor
	index      ports.IndexService
	extraction ports.ExtractionService
	assessor   AssessmentRecorder
}

func NewProcessLoanUseCase(
	jobs ports.JobRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	index ports.IndexService,
	extraction ports.ExtractionService,
	assessor AssessmentRecorder,
) *ProcessLoanUseCase {
	return &ProcessLoanUseCase{
		jobs:       jobs,
		storage:    storage,
		extractor:  extractor,
		index:      index,
		extraction: extraction,
		assessor:   assessor,
	}
}

type loanRun struct {
	processed int
	skipped   int
	chunks    int
}

// ProcessJob runs one ingestion job. A failed run is recorded on the job and
// never retried.
func (uc *ProcessLoanUseCase) ProcessJob(ctx context.Context, event domain.JobEvent) error {
	if err := uc.jobs.MarkRunning(ctx, event.JobID); err != nil {
		return fmt.Errorf("set status=running: %w", err)
	}

	summary, run, err := uc.processPipeline(ctx, event)
	if err != nil {
		if failErr := uc.jobs.MarkFailed(ctx, event.JobID, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.jobs.MarkCompleted(ctx, event.JobID, summary, run.skipped); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}
	return nil
}

func (uc *ProcessLoanUseCase) processPipeline(ctx context.Context, event domain.JobEvent) (domain.JobSummary, loanRun, error) {
	fields, err := uc.loadFields(ctx, event.LoanID)
	if err != nil {
		return domain.JobSummary{}, loanRun{}, err
	}

	docs, err := uc.listDocuments(ctx, event.LoanID)
	if err != nil {
		return domain.JobSummary{}, loanRun{}, err
	}
	if len(docs) == 0 {
		return domain.JobSummary{}, loanRun{}, domain.WrapError(domain.ErrInvalidInput, "process loan", errors.New("no documents uploaded"))
	}

	if _, err := uc.index.ClearLoan(ctx, event.LoanID); err != nil {
		return domain.JobSummary{}, loanRun{}, fmt.Errorf("clear loan index: %w", err)
	}

	run, err := uc.indexDocuments(ctx, event, docs)
	if err != nil {
		return domain.JobSummary{}, run, err
	}
	if run.processed == 0 {
		return domain.JobSummary{}, run, domain.WrapError(domain.ErrInvalidInput, "process loan", errors.New("no extractable documents"))
	}
	fields.DocumentCount = run.processed

	extractions, err := uc.extraction.ExtractAll(ctx, event.LoanID)
	if err != nil {
		return domain.JobSummary{}, run, fmt.Errorf("extract fields: %w", err)
	}

	assessment, err := uc.assessor.Record(ctx, event.LoanID, event.JobID, fields, extractions)
	if err != nil {
		return domain.JobSummary{}, run, err
	}

	return summarize(assessment, extractions, run), run, nil
}

func (uc *ProcessLoanUseCase) indexDocuments(ctx context.Context, event domain.JobEvent, docs []domain.LoanDocument) (loanRun, error) {
	var run loanRun
	for _, doc := range docs {
		text, err := uc.extractor.Extract(ctx, doc)
		if err != nil || CleanText(text) == "" {
			run.skipped++
			attrs := []any{"job_id", event.JobID, "loan_id", event.LoanID, "file", doc.Filename}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			slog.Warn("ingestion_document_skipped", attrs...)
			continue
		}

		added, err := uc.index.IngestText(ctx, event.LoanID, text, doc.Filename, doc.DocType)
		if err != nil {
			return run, fmt.Errorf("index %s: %w", doc.Filename, err)
		}
		run.processed++
		run.chunks += added
	}
	return run, nil
}

func (uc *ProcessLoanUseCase) loadFields(ctx context.Context, loanID string) (domain.ProjectFields, error) {
	var fields domain.ProjectFields
	rc, err := uc.storage.Open(ctx, path.Join(loanPrefix(loanID), fieldsFile))
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return fields, nil
		}
		return fields, fmt.Errorf("open project fields: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return fields, fmt.Errorf("read project fields: %w", err)
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fields, domain.WrapError(domain.ErrInvalidInput, "decode project fields", err)
	}
	return fields, nil
}

func (uc *ProcessLoanUseCase) listDocuments(ctx context.Context, loanID string) ([]domain.LoanDocument, error) {
	keys, err := uc.storage.List(ctx, DocumentPrefix(loanID))
	if err != nil {
		return nil, fmt.Errorf("list loan documents: %w", err)
	}
	sort.Strings(keys)

	docs := make([]domain.LoanDocument, 0, len(keys))
	for _, key := range keys {
		if doc, ok := documentFromKey(loanID, key); ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func summarize(a *domain.LoanAssessment, extractions []domain.FieldExtraction, run loanRun) domain.JobSummary {
	found := 0
	for _, ex := range extractions {
		if ex.Found {
			found++
		}
	}
	return domain.JobSummary{
		ESGScore:           a.ESG.TotalScore,
		Grade:              a.ESG.Grade,
		GLPEligible:        a.Eligibility.IsEligible,
		GLPCategory:        a.Eligibility.Category,
		CarbonRisk:         a.Carbon.RiskLevel,
		DNSHPass:           a.DNSH.OverallPass,
		FieldsExtracted:    found,
		DocumentsProcessed: run.processed,
		ChunksCreated:      run.chunks,
	}
}
