// Package sqlite persists ingestion jobs and assessment snapshots in a single
// local database file. It backs the CLI, which runs without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS ingestion_jobs (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL,
	status TEXT NOT NULL,
	documents_processed INTEGER NOT NULL DEFAULT 0,
	documents_skipped INTEGER NOT NULL DEFAULT 0,
	chunks_created INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	summary TEXT,
	created_at TIMESTAMP NOT NULL,
	started_at TIMESTAMP,
	completed_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS loan_assessments (
	id TEXT PRIMARY KEY,
	loan_id TEXT NOT NULL,
	job_id TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loan_assessments_loan_created ON loan_assessments(loan_id, created_at);
`

type Store struct {
	db *sql.DB
}

// Open creates or opens glc.db under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, "glc.db")
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Jobs() *JobRepository {
	return &JobRepository{db: s.db}
}

func (s *Store) Assessments() *AssessmentRepository {
	return &AssessmentRepository{db: s.db}
}

type JobRepository struct {
	db *sql.DB
}

func (r *JobRepository) Create(ctx context.Context, job *domain.IngestionJob) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingestion_jobs (id, loan_id, status, created_at) VALUES (?, ?, ?, ?)`,
		job.ID, job.LoanID, string(job.Status), job.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ingestion job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.IngestionJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, loan_id, status, documents_processed, documents_skipped, chunks_created, error_message, summary, created_at, started_at, completed_at
FROM ingestion_jobs WHERE id = ?`, id)

	var job domain.IngestionJob
	var status string
	var summary sql.NullString
	var started, completed sql.NullTime
	err := row.Scan(&job.ID, &job.LoanID, &status, &job.DocumentsProcessed, &job.DocumentsSkipped,
		&job.ChunksCreated, &job.Error, &summary, &job.CreatedAt, &started, &completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get ingestion job", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan ingestion job: %w", err)
	}
	job.Status = domain.JobStatus(status)
	if started.Valid {
		job.StartedAt = &started.Time
	}
	if completed.Valid {
		job.CompletedAt = &completed.Time
	}
	if summary.Valid && summary.String != "" {
		var s domain.JobSummary
		if err := json.Unmarshal([]byte(summary.String), &s); err != nil {
			return nil, fmt.Errorf("unmarshal job summary: %w", err)
		}
		job.Summary = &s
	}
	return &job, nil
}

func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.update(ctx, "mark job running", id,
		`UPDATE ingestion_jobs SET status = ?, started_at = ?, error_message = '' WHERE id = ?`,
		string(domain.JobRunning), time.Now().UTC(), id)
}

func (r *JobRepository) MarkCompleted(ctx context.Context, id string, summary domain.JobSummary, documentsSkipped int) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal job summary: %w", err)
	}
	return r.update(ctx, "mark job completed", id, `
UPDATE ingestion_jobs
SET status = ?, documents_processed = ?, documents_skipped = ?, chunks_created = ?, summary = ?, completed_at = ?
WHERE id = ?`,
		string(domain.JobCompleted), summary.DocumentsProcessed, documentsSkipped, summary.ChunksCreated,
		string(raw), time.Now().UTC(), id)
}

func (r *JobRepository) MarkFailed(ctx context.Context, id string, errMessage string) error {
	return r.update(ctx, "mark job failed", id,
		`UPDATE ingestion_jobs SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`,
		string(domain.JobFailed), errMessage, time.Now().UTC(), id)
}

func (r *JobRepository) update(ctx context.Context, op, id, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("id=%s", id))
	}
	return nil
}

type AssessmentRepository struct {
	db *sql.DB
}

func (r *AssessmentRepository) Save(ctx context.Context, a *domain.LoanAssessment) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO loan_assessments (id, loan_id, job_id, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.LoanID, a.JobID, string(raw), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert loan assessment: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) Latest(ctx context.Context, loanID string) (*domain.LoanAssessment, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM loan_assessments WHERE loan_id = ? ORDER BY created_at DESC LIMIT 1`,
		loanID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "latest assessment", fmt.Errorf("loan=%s", loanID))
		}
		return nil, fmt.Errorf("select loan assessment: %w", err)
	}
	var a domain.LoanAssessment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("unmarshal assessment: %w", err)
	}
	return &a, nil
}
