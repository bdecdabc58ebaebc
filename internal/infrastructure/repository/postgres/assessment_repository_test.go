package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

func newAssessmentRepoWithMock(t *testing.T) (*AssessmentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewAssessmentRepository(db, false), mock, func() { _ = db.Close() }
}

func TestAssessmentRepositorySave(t *testing.T) {
	repo, mock, done := newAssessmentRepoWithMock(t)
	defer done()

	mock.ExpectExec(`INSERT INTO "loan_assessments"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &domain.LoanAssessment{
		ID:        "a-1",
		LoanID:    "L1",
		JobID:     "j-1",
		ESG:       domain.ESGScore{TotalScore: 64, Grade: "B"},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAssessmentRepositoryLatestDecodesPayload(t *testing.T) {
	repo, mock, done := newAssessmentRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "loan_id", "job_id", "esg_score", "grade", "glp_eligible", "carbon_risk", "payload", "created_at"}).
		AddRow("a-2", "L1", "j-2", 80.0, "A", true, "low",
			[]byte(`{"id":"a-2","loan_id":"L1","job_id":"j-2","esg":{"total_score":80,"grade":"A"}}`), now)
	mock.ExpectQuery(`FROM "loan_assessments"`).WillReturnRows(rows)

	got, err := repo.Latest(context.Background(), "L1")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got.ID != "a-2" || got.ESG.Grade != "A" {
		t.Fatalf("unexpected assessment %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAssessmentRepositoryLatestReturnsNotFound(t *testing.T) {
	repo, mock, done := newAssessmentRepoWithMock(t)
	defer done()

	mock.ExpectQuery(`FROM "loan_assessments"`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Latest(context.Background(), "L9")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
