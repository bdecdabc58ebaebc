package domain

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

type JobSummary struct {
	ESGScore           float64   `json:"esg_score"`
	Grade              string    `json:"grade"`
	GLPEligible        bool      `json:"glp_eligible"`
	GLPCategory        string    `json:"glp_category"`
	CarbonRisk         RiskLevel `json:"carbon_risk"`
	DNSHPass           bool      `json:"dnsh_pass"`
	FieldsExtracted    int       `json:"fields_extracted"`
	DocumentsProcessed int       `json:"documents_processed"`
	ChunksCreated      int       `json:"chunks_created"`
}

// IngestionJob tracks one background index-and-assess run for a loan.
type IngestionJob struct {
	ID                 string      `json:"id"`
	LoanID             string      `json:"loan_id"`
	Status             JobStatus   `json:"status"`
	DocumentsProcessed int         `json:"documents_processed"`
	DocumentsSkipped   int         `json:"documents_skipped"`
	ChunksCreated      int         `json:"chunks_created"`
	Error              string      `json:"error,omitempty"`
	Summary            *JobSummary `json:"summary,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	StartedAt          *time.Time  `json:"started_at,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
}

// JobEvent is the queue payload announcing a submitted job.
type JobEvent struct {
	JobID       string    `json:"job_id"`
	LoanID      string    `json:"loan_id"`
	SubmittedAt time.Time `json:"submitted_at,omitzero"`
}
