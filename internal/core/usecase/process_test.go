package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/green-loan-compliance/internal/core/compliance"
	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/extraction"
	"github.com/kirillkom/green-loan-compliance/internal/core/scoring"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/chunking"
)

type extractorFake struct {
	texts map[string]string
}

func (f *extractorFake) Extract(_ context.Context, doc domain.LoanDocument) (string, error) {
	text, ok := f.texts[doc.Filename]
	if !ok {
		return "", errors.New("unsupported format")
	}
	return text, nil
}

type processHarness struct {
	jobs        *jobRepoFake
	storage     *storageFake
	index       *indexFake
	assessments *assessmentRepoFake
	uc          *ProcessLoanUseCase
}

func newProcessHarness(t *testing.T, texts map[string]string) *processHarness {
	t.Helper()
	h := &processHarness{
		jobs:        newJobRepoFake(),
		storage:     newStorageFake(),
		index:       &indexFake{hits: loanHits()},
		assessments: &assessmentRepoFake{},
	}
	rules := compliance.NewEngine(compliance.DefaultTables())
	assess := NewAssessmentUseCase(rules, scoring.NewEngine(rules, scoring.DefaultWeights(), scoring.DefaultBenchmarks()), h.assessments)
	indexer := NewIndexUseCase(chunking.NewSplitter(50, 10), h.index)
	extract := NewExtractionUseCase(h.index, &readerFake{span: domain.Span{Answer: "40 MW solar farm", Score: 0.9}}, nil, extraction.DefaultThresholds(), 0)
	h.uc = NewProcessLoanUseCase(h.jobs, h.storage, &extractorFake{texts: texts}, indexer, extract, assess)

	ingest := NewIngestLoanUseCase(h.jobs, h.storage, &queueFake{})
	for name := range texts {
		if _, err := ingest.Upload(context.Background(), "loan-1", name, "report", strings.NewReader("raw")); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
	}
	return h
}

func TestProcessJobCompletes(t *testing.T) {
	h := newProcessHarness(t, map[string]string{
		"report.pdf": "Proceeds finance a   solar farm with battery storage.",
		"empty.txt":  "   ",
	})
	if _, err := h.storage.Save(context.Background(), "loans/loan-1/docs/report/x_scan.bin", strings.NewReader("?")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	err := h.uc.ProcessJob(context.Background(), domain.JobEvent{JobID: "job-1", LoanID: "loan-1"})
	if err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	if got := h.jobs.statuses; len(got) != 2 || got[0] != domain.JobRunning || got[1] != domain.JobCompleted {
		t.Fatalf("unexpected statuses: %v", got)
	}
	if h.jobs.skipped != 2 {
		t.Fatalf("expected 2 skipped documents, got %d", h.jobs.skipped)
	}
	if h.jobs.summary.DocumentsProcessed != 1 || h.jobs.summary.ChunksCreated != 1 {
		t.Fatalf("unexpected summary: %+v", h.jobs.summary)
	}
	if h.jobs.summary.FieldsExtracted != len(extraction.Questions) {
		t.Fatalf("expected all fields extracted, got %d", h.jobs.summary.FieldsExtracted)
	}
	if len(h.index.cleared) != 1 {
		t.Fatalf("expected loan index to be cleared before rebuild")
	}
	chunks := h.index.added["loan-1"]
	if len(chunks) != 1 || chunks[0].Text != "Proceeds finance a solar farm with battery storage." {
		t.Fatalf("unexpected chunks: %+v", chunks)
	}
	if len(h.assessments.saved) != 1 || h.assessments.saved[0].JobID != "job-1" {
		t.Fatalf("expected one stored assessment")
	}
}

func TestProcessJobFailsWithoutDocuments(t *testing.T) {
	h := newProcessHarness(t, nil)

	err := h.uc.ProcessJob(context.Background(), domain.JobEvent{JobID: "job-1", LoanID: "loan-1"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if got := h.jobs.statuses; len(got) != 2 || got[1] != domain.JobFailed {
		t.Fatalf("unexpected statuses: %v", got)
	}
	if !strings.Contains(h.jobs.errMsg, "no documents uploaded") {
		t.Fatalf("unexpected error message %q", h.jobs.errMsg)
	}
}

func TestProcessJobFailsWhenNothingExtracts(t *testing.T) {
	h := newProcessHarness(t, map[string]string{"blank.txt": ""})

	err := h.uc.ProcessJob(context.Background(), domain.JobEvent{JobID: "job-1", LoanID: "loan-1"})
	if err == nil || !strings.Contains(h.jobs.errMsg, "no extractable documents") {
		t.Fatalf("expected extraction failure, got %v / %q", err, h.jobs.errMsg)
	}
}

func TestProcessJobReadsProjectFields(t *testing.T) {
	h := newProcessHarness(t, map[string]string{"report.pdf": "Solar farm."})
	ingest := NewIngestLoanUseCase(h.jobs, h.storage, &queueFake{})
	if _, err := ingest.Submit(context.Background(), "loan-1", domain.ProjectFields{Sector: "Mining and quarrying", UseOfProceeds: "Expansion of a coal mine"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := h.uc.ProcessJob(context.Background(), domain.JobEvent{JobID: "job-1", LoanID: "loan-1"}); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if h.jobs.summary.CarbonRisk != domain.RiskHigh || h.jobs.summary.DNSHPass {
		t.Fatalf("expected coal sector to fail: %+v", h.jobs.summary)
	}
}
