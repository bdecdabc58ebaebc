package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.IngestionJob) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ingestion_jobs (id, loan_id, status, created_at)
VALUES ($1,$2,$3,$4)
`, job.ID, job.LoanID, string(job.Status), job.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ingestion job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.IngestionJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, loan_id, status, documents_processed, documents_skipped, chunks_created, error_message, summary, created_at, started_at, completed_at
FROM ingestion_jobs
WHERE id = $1
`, id)

	var job domain.IngestionJob
	var status string
	var summaryRaw []byte
	err := row.Scan(
		&job.ID, &job.LoanID, &status, &job.DocumentsProcessed, &job.DocumentsSkipped, &job.ChunksCreated,
		&job.Error, &summaryRaw, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get ingestion job", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan ingestion job: %w", err)
	}
	job.Status = domain.JobStatus(status)
	if len(summaryRaw) > 0 {
		var summary domain.JobSummary
		if err := json.Unmarshal(summaryRaw, &summary); err != nil {
			return nil, fmt.Errorf("unmarshal job summary: %w", err)
		}
		job.Summary = &summary
	}
	return &job, nil
}

func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE ingestion_jobs
SET status = $2, started_at = $3, error_message = ''
WHERE id = $1
`, id, string(domain.JobRunning), time.Now().UTC())
	return affectedOne(result, err, "mark job running", id)
}

func (r *JobRepository) MarkCompleted(ctx context.Context, id string, summary domain.JobSummary, documentsSkipped int) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal job summary: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE ingestion_jobs
SET status = $2, documents_processed = $3, documents_skipped = $4, chunks_created = $5, summary = $6, completed_at = $7
WHERE id = $1
`, id, string(domain.JobCompleted), summary.DocumentsProcessed, documentsSkipped, summary.ChunksCreated, summaryJSON, time.Now().UTC())
	return affectedOne(result, err, "mark job completed", id)
}

func (r *JobRepository) MarkFailed(ctx context.Context, id string, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE ingestion_jobs
SET status = $2, error_message = $3, completed_at = $4
WHERE id = $1
`, id, string(domain.JobFailed), errMessage, time.Now().UTC())
	return affectedOne(result, err, "mark job failed", id)
}

func affectedOne(result sql.Result, err error, op, id string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("id=%s", id))
	}
	return nil
}
