package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type indexFake struct {
	hits      []domain.SearchHit
	searchErr error
	queries   []domain.SearchQuery
	added     map[string][]domain.DocumentChunk
	cleared   []string
}

func (f *indexFake) Add(_ context.Context, loanID string, chunks []domain.DocumentChunk) (int, error) {
	if f.added == nil {
		f.added = map[string][]domain.DocumentChunk{}
	}
	f.added[loanID] = append(f.added[loanID], chunks...)
	return len(chunks), nil
}

func (f *indexFake) Search(_ context.Context, q domain.SearchQuery) ([]domain.SearchHit, error) {
	f.queries = append(f.queries, q)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *indexFake) Clear(_ context.Context, loanID string) (int, error) {
	f.cleared = append(f.cleared, loanID)
	n := len(f.added[loanID])
	delete(f.added, loanID)
	return n, nil
}

func (f *indexFake) RemoveSource(context.Context, string, string) (int, error) { return 0, nil }

func (f *indexFake) Stats(loanID string) domain.LoanIndexStats {
	return domain.LoanIndexStats{LoanID: loanID, ChunkCount: len(f.added[loanID])}
}

func (f *indexFake) GlobalStats() domain.IndexStats {
	return domain.IndexStats{UniqueLoans: len(f.added)}
}

type readerFake struct {
	span      domain.Span
	err       error
	questions []string
	contexts  []string
}

func (f *readerFake) ReadSpan(_ context.Context, question, contextText string) (domain.Span, error) {
	f.questions = append(f.questions, question)
	f.contexts = append(f.contexts, contextText)
	if f.err != nil {
		return domain.Span{}, f.err
	}
	return f.span, nil
}

type generatorFake struct {
	answer  string
	err     error
	prompts []string
}

func (f *generatorFake) GenerateFromPrompt(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type storageFake struct {
	objects map[string][]byte
	saveErr error
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.objects[key] = raw
	return int64(len(raw)), nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.objects[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open object", errors.New(key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix+"/") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

type jobRepoFake struct {
	jobs      map[string]*domain.IngestionJob
	createErr error
	statuses  []domain.JobStatus
	summary   domain.JobSummary
	skipped   int
	errMsg    string
}

func newJobRepoFake() *jobRepoFake {
	return &jobRepoFake{jobs: map[string]*domain.IngestionJob{}}
}

func (f *jobRepoFake) Create(_ context.Context, job *domain.IngestionJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyJob := *job
	f.jobs[job.ID] = &copyJob
	return nil
}

func (f *jobRepoFake) GetByID(_ context.Context, id string) (*domain.IngestionJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get job", errors.New(id))
	}
	return job, nil
}

func (f *jobRepoFake) MarkRunning(context.Context, string) error {
	f.statuses = append(f.statuses, domain.JobRunning)
	return nil
}

func (f *jobRepoFake) MarkCompleted(_ context.Context, _ string, summary domain.JobSummary, skipped int) error {
	f.statuses = append(f.statuses, domain.JobCompleted)
	f.summary = summary
	f.skipped = skipped
	return nil
}

func (f *jobRepoFake) MarkFailed(_ context.Context, _ string, errMessage string) error {
	f.statuses = append(f.statuses, domain.JobFailed)
	f.errMsg = errMessage
	return nil
}

type queueFake struct {
	events []domain.JobEvent
	err    error
}

func (f *queueFake) PublishJobSubmitted(_ context.Context, event domain.JobEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *queueFake) SubscribeJobSubmitted(context.Context, func(context.Context, domain.JobEvent) error) error {
	return nil
}

type assessmentRepoFake struct {
	saved []*domain.LoanAssessment
}

func (f *assessmentRepoFake) Save(_ context.Context, a *domain.LoanAssessment) error {
	f.saved = append(f.saved, a)
	return nil
}

func (f *assessmentRepoFake) Latest(_ context.Context, loanID string) (*domain.LoanAssessment, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].LoanID == loanID {
			return f.saved[i], nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "latest assessment", errors.New(loanID))
}
