package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type assessmentRecord struct {
	bun.BaseModel `bun:"table:loan_assessments,alias:la"`

	ID         string                `bun:"id,pk"`
	LoanID     string                `bun:"loan_id,notnull"`
	JobID      string                `bun:"job_id,notnull"`
	ESGScore   float64               `bun:"esg_score,notnull"`
	Grade      string                `bun:"grade,notnull"`
	Eligible   bool                  `bun:"glp_eligible,notnull"`
	CarbonRisk string                `bun:"carbon_risk,notnull"`
	Payload    domain.LoanAssessment `bun:"payload,type:jsonb,notnull"`
	CreatedAt  time.Time             `bun:"created_at,notnull"`
}

// AssessmentRepository keeps every verdict snapshot; Latest returns the
// newest per loan.
type AssessmentRepository struct {
	db *bun.DB
}

// NewAssessmentRepository wraps an open pgx pool. With debug set every query
// is logged by bundebug.
func NewAssessmentRepository(sqldb *sql.DB, debug bool) *AssessmentRepository {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &AssessmentRepository{db: db}
}

func (r *AssessmentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().
		Model((*assessmentRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create loan_assessments: %w", err)
	}
	if _, err := r.db.NewCreateIndex().
		Model((*assessmentRecord)(nil)).
		Index("idx_loan_assessments_loan_created").
		IfNotExists().
		Column("loan_id", "created_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("create loan_assessments index: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) Save(ctx context.Context, a *domain.LoanAssessment) error {
	rec := assessmentRecord{
		ID:         a.ID,
		LoanID:     a.LoanID,
		JobID:      a.JobID,
		ESGScore:   a.ESG.TotalScore,
		Grade:      a.ESG.Grade,
		Eligible:   a.Eligibility.IsEligible,
		CarbonRisk: string(a.Carbon.RiskLevel),
		Payload:    *a,
		CreatedAt:  a.CreatedAt,
	}
	if _, err := r.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert loan assessment: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) Latest(ctx context.Context, loanID string) (*domain.LoanAssessment, error) {
	var rec assessmentRecord
	err := r.db.NewSelect().
		Model(&rec).
		Where("loan_id = ?", loanID).
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "latest assessment", fmt.Errorf("loan=%s", loanID))
		}
		return nil, fmt.Errorf("select loan assessment: %w", err)
	}
	out := rec.Payload
	return &out, nil
}
