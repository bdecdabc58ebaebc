package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
)

const (
	defaultDocType = "general"
	fieldsFile     = "fields.json"
)

type IngestLoanUseCase struct {
	jobs    ports.JobRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestLoanUseCase(
	jobs ports.JobRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestLoanUseCase {
	return &IngestLoanUseCase{
		jobs:    jobs,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores one supporting document under the loan's prefix.
func (uc *IngestLoanUseCase) Upload(
	ctx context.Context,
	loanID, filename, docType string,
	body io.Reader,
) (*domain.LoanDocument, error) {
	if err := checkLoanID("upload document", loanID); err != nil {
		return nil, err
	}
	docType = sanitizeSegment(docType)
	if docType == "" {
		docType = defaultDocType
	}

	name := sanitizeFilename(filename)
	storageKey := path.Join(DocumentPrefix(loanID), docType, uuid.NewString()+"_"+name)

	size, err := uc.storage.Save(ctx, storageKey, body)
	if err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	return &domain.LoanDocument{
		LoanID:     loanID,
		Filename:   name,
		DocType:    docType,
		StorageKey: storageKey,
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Submit records the loan's structured fields and queues an ingestion job.
func (uc *IngestLoanUseCase) Submit(ctx context.Context, loanID string, fields domain.ProjectFields) (*domain.IngestionJob, error) {
	if err := checkLoanID("submit ingestion", loanID); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit ingestion", err)
	}
	if _, err := uc.storage.Save(ctx, path.Join(loanPrefix(loanID), fieldsFile), bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("save project fields: %w", err)
	}

	job := &domain.IngestionJob{
		ID:        uuid.NewString(),
		LoanID:    loanID,
		Status:    domain.JobQueued,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create ingestion job: %w", err)
	}

	if err := uc.queue.PublishJobSubmitted(ctx, domain.JobEvent{JobID: job.ID, LoanID: loanID, SubmittedAt: job.CreatedAt}); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	return job, nil
}

func (uc *IngestLoanUseCase) GetByID(ctx context.Context, id string) (*domain.IngestionJob, error) {
	return uc.jobs.GetByID(ctx, id)
}

func loanPrefix(loanID string) string {
	return path.Join("loans", loanID)
}

// DocumentPrefix is the storage prefix holding a loan's uploaded documents.
func DocumentPrefix(loanID string) string {
	return path.Join(loanPrefix(loanID), "docs")
}

// documentFromKey rebuilds document metadata from a key written by Upload.
func documentFromKey(loanID, key string) (domain.LoanDocument, bool) {
	rel := strings.TrimPrefix(key, DocumentPrefix(loanID)+"/")
	docType, name, ok := strings.Cut(rel, "/")
	if !ok || docType == "" || name == "" || strings.Contains(name, "/") {
		return domain.LoanDocument{}, false
	}
	if _, original, ok := strings.Cut(name, "_"); ok && original != "" {
		name = original
	}
	return domain.LoanDocument{
		LoanID:     loanID,
		Filename:   name,
		DocType:    docType,
		StorageKey: key,
	}, true
}

// checkLoanID rejects blank ids and ids that would not survive as a storage
// path segment unchanged, so every entry point addresses the same loan.
func checkLoanID(operation, loanID string) error {
	if strings.TrimSpace(loanID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, operation, errors.New("loan id is required"))
	}
	if sanitizeSegment(loanID) != loanID {
		return domain.WrapError(domain.ErrInvalidInput, operation,
			fmt.Errorf("loan id %q may only contain letters, digits, '.', '-' and '_'", loanID))
	}
	return nil
}

func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.Trim(sanitizeFilename(s), ".")
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
