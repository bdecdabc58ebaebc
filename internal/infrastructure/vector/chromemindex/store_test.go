package chromemindex

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

const testDim = 64

// hashEmbedder is a deterministic bag-of-words embedder.
type hashEmbedder struct {
	err      error
	queryErr error
}

func (e *hashEmbedder) vector(text string) []float32 {
	v := make([]float32, testDim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,")))
		v[h.Sum32()%testDim]++
	}
	v[0] += 0.01
	return v
}

func (e *hashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *hashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if e.queryErr != nil {
		return nil, e.queryErr
	}
	return e.vector(text), nil
}

func chunk(text, source, docType string, i int) domain.DocumentChunk {
	return domain.DocumentChunk{Text: text, ChunkIndex: i, SourceFile: source, DocType: docType}
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.Add(ctx, "loan-a", []domain.DocumentChunk{
		chunk("solar panels on warehouse roofs", "plan.pdf", "report", 0),
		chunk("scope one emissions of the bakery", "plan.pdf", "report", 1),
		chunk("wind turbine maintenance contract", "annex.docx", "contract", 0),
	}); err != nil {
		t.Fatalf("Add(loan-a) error = %v", err)
	}
	if _, err := s.Add(ctx, "loan-b", []domain.DocumentChunk{
		chunk("solar panels on warehouse roofs", "other.pdf", "report", 0),
	}); err != nil {
		t.Fatalf("Add(loan-b) error = %v", err)
	}
}

func TestSearchSelfRetrievalWithinLoan(t *testing.T) {
	s, err := Open(context.Background(), "", &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	seed(t, s)

	hits, err := s.Search(context.Background(), domain.SearchQuery{Text: "scope one emissions of the bakery", LoanID: "loan-a", K: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Text != "scope one emissions of the bakery" || hits[0].Score < 0.999 {
		t.Fatalf("expected self retrieval first, got %+v", hits[0])
	}
	for _, h := range hits {
		if h.LoanID != "loan-a" {
			t.Fatalf("cross-loan hit: %+v", h)
		}
	}
}

func TestSearchFiltersDocTypeAndFansOut(t *testing.T) {
	s, err := Open(context.Background(), "", &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	seed(t, s)

	hits, err := s.Search(context.Background(), domain.SearchQuery{Text: "solar panels", LoanID: "loan-a", K: 5, DocType: "contract"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Source != "annex.docx" {
		t.Fatalf("expected only the contract chunk, got %+v", hits)
	}

	all, err := s.Search(context.Background(), domain.SearchQuery{Text: "solar panels on warehouse roofs", K: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	loans := map[string]bool{}
	for _, h := range all {
		loans[h.LoanID] = true
	}
	if len(all) != 2 || !loans["loan-a"] || !loans["loan-b"] {
		t.Fatalf("expected fan-out over both loans, got %+v", all)
	}

	none, err := s.Search(context.Background(), domain.SearchQuery{Text: "solar", LoanID: "missing", K: 3})
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no hits for unknown loan, got %v / %v", none, err)
	}
}

func TestRemoveSourceRebuilds(t *testing.T) {
	s, err := Open(context.Background(), "", &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	seed(t, s)

	removed, err := s.RemoveSource(context.Background(), "loan-a", "plan.pdf")
	if err != nil {
		t.Fatalf("RemoveSource() error = %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	stats := s.Stats("loan-a")
	if stats.ChunkCount != 1 || len(stats.Sources) != 1 || stats.Sources[0] != "annex.docx" {
		t.Fatalf("unexpected stats after rebuild: %+v", stats)
	}

	hits, err := s.Search(context.Background(), domain.SearchQuery{Text: "wind turbine maintenance contract", LoanID: "loan-a", K: 3})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Source != "annex.docx" {
		t.Fatalf("unexpected hits after rebuild: %+v", hits)
	}
	if got := s.Stats("loan-b").ChunkCount; got != 1 {
		t.Fatalf("other loan must be untouched, got %d chunks", got)
	}
}

func TestClearAndGlobalStats(t *testing.T) {
	s, err := Open(context.Background(), "", &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	seed(t, s)

	if got := s.GlobalStats(); got.TotalChunks != 4 || got.UniqueLoans != 2 {
		t.Fatalf("unexpected global stats: %+v", got)
	}
	removed, err := s.Clear(context.Background(), "loan-a")
	if err != nil || removed != 3 {
		t.Fatalf("Clear() = %d, %v", removed, err)
	}
	if got := s.GlobalStats(); got.TotalChunks != 1 || got.UniqueLoans != 1 {
		t.Fatalf("unexpected global stats after clear: %+v", got)
	}
	if removed, _ := s.Clear(context.Background(), "loan-a"); removed != 0 {
		t.Fatalf("second clear removed %d", removed)
	}
	if _, err := s.Add(context.Background(), "loan-a", []domain.DocumentChunk{chunk("fresh text", "new.pdf", "report", 0)}); err != nil {
		t.Fatalf("Add() after clear error = %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	seed(t, s)
	if _, err := s.RemoveSource(context.Background(), "loan-a", "annex.docx"); err != nil {
		t.Fatalf("RemoveSource() error = %v", err)
	}

	reopened, err := Open(context.Background(), dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := reopened.GlobalStats(); got.TotalChunks != 3 || got.UniqueLoans != 2 {
		t.Fatalf("unexpected stats after reopen: %+v", got)
	}
	hits, err := reopened.Search(context.Background(), domain.SearchQuery{Text: "scope one emissions of the bakery", LoanID: "loan-a", K: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkIndex != 1 || hits[0].Source != "plan.pdf" {
		t.Fatalf("unexpected hit after reopen: %+v", hits)
	}

	if _, err := reopened.Clear(context.Background(), "loan-b"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	again, err := Open(context.Background(), dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := again.Stats("loan-b").ChunkCount; got != 0 {
		t.Fatalf("cleared loan restored with %d chunks", got)
	}
}

func TestEmbeddingFailures(t *testing.T) {
	if _, err := Open(context.Background(), "", &hashEmbedder{queryErr: errors.New("down")}); !domain.IsKind(err, domain.ErrUnavailable) {
		t.Fatalf("expected unavailable on probe failure, got %v", err)
	}

	embedder := &hashEmbedder{}
	s, err := Open(context.Background(), "", embedder)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	seed(t, s)

	embedder.err = errors.New("down")
	if _, err := s.Add(context.Background(), "loan-a", []domain.DocumentChunk{chunk("x y z", "x.pdf", "report", 0)}); err == nil {
		t.Fatalf("expected add error")
	}
	if got := s.Stats("loan-a").ChunkCount; got != 3 {
		t.Fatalf("failed add changed the index: %d", got)
	}

	embedder.queryErr = errors.New("down")
	if _, err := s.Search(context.Background(), domain.SearchQuery{Text: "solar", LoanID: "loan-a", K: 3}); err == nil {
		t.Fatalf("expected search error, not an empty result")
	}
}

func TestStoresSharingDirectorySeeEachOthersWrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	api, err := Open(ctx, dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open(api) error = %v", err)
	}
	worker, err := Open(ctx, dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open(worker) error = %v", err)
	}

	seed(t, worker)
	hits, err := api.Search(ctx, domain.SearchQuery{Text: "scope one emissions of the bakery", LoanID: "loan-a", K: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Text != "scope one emissions of the bakery" {
		t.Fatalf("api store missed the worker's chunks: %+v", hits)
	}
	if got := api.GlobalStats(); got.TotalChunks != 4 || got.UniqueLoans != 2 {
		t.Fatalf("unexpected api global stats: %+v", got)
	}

	if removed, err := api.RemoveSource(ctx, "loan-a", "plan.pdf"); err != nil || removed != 2 {
		t.Fatalf("RemoveSource() = %d, %v", removed, err)
	}
	if got := worker.Stats("loan-a"); got.ChunkCount != 1 || got.Sources[0] != "annex.docx" {
		t.Fatalf("worker store missed the api rebuild: %+v", got)
	}

	if _, err := worker.Add(ctx, "loan-a", []domain.DocumentChunk{chunk("heat pump retrofit", "retrofit.pdf", "report", 0)}); err != nil {
		t.Fatalf("Add() after remote rebuild error = %v", err)
	}
	if got := api.Stats("loan-a"); got.ChunkCount != 2 {
		t.Fatalf("api store has %d chunks, want 2", got.ChunkCount)
	}

	if removed, err := api.Clear(ctx, "loan-a"); err != nil || removed != 2 {
		t.Fatalf("Clear() = %d, %v", removed, err)
	}
	none, err := worker.Search(ctx, domain.SearchQuery{Text: "heat pump retrofit", LoanID: "loan-a", K: 3})
	if err != nil || len(none) != 0 {
		t.Fatalf("worker still sees cleared chunks: %v / %v", none, err)
	}

	reopened, err := Open(ctx, dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := reopened.GlobalStats(); got.TotalChunks != 1 || got.UniqueLoans != 1 {
		t.Fatalf("unexpected stats after reopen: %+v", got)
	}
}

func TestPersistRejectsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	api, err := Open(ctx, dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open(api) error = %v", err)
	}
	worker, err := Open(ctx, dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open(worker) error = %v", err)
	}
	seed(t, worker)
	if got := api.Stats("loan-a").ChunkCount; got != 3 {
		t.Fatalf("expected 3 chunks, got %d", got)
	}
	if _, err := worker.Add(ctx, "loan-a", []domain.DocumentChunk{chunk("battery storage", "storage.pdf", "report", 0)}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	idx, err := api.loan("loan-a", false)
	if err != nil || idx == nil {
		t.Fatalf("loan() = %v, %v", idx, err)
	}
	idx.mu.Lock()
	err = api.persist(idx)
	idx.mu.Unlock()
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected stale write to be refused, got %v", err)
	}
	if got := api.Stats("loan-a").ChunkCount; got != 4 {
		t.Fatalf("expected the newer generation after refusal, got %d chunks", got)
	}
}

func TestConcurrentAddClearSearchOnOneLoan(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(ctx, dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	seed(t, s)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 8; i++ {
		wg.Add(4)
		go func() {
			defer wg.Done()
			text := fmt.Sprintf("turbine blade inspection %d", i)
			if _, err := s.Add(ctx, "loan-a", []domain.DocumentChunk{chunk(text, fmt.Sprintf("doc-%d.pdf", i), "report", 0)}); err != nil {
				errs <- fmt.Errorf("add: %w", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := s.Clear(ctx, "loan-a"); err != nil {
				errs <- fmt.Errorf("clear: %w", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := s.Search(ctx, domain.SearchQuery{Text: "turbine blade", LoanID: "loan-a", K: 3}); err != nil {
				errs <- fmt.Errorf("search: %w", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := s.RemoveSource(ctx, "loan-a", fmt.Sprintf("doc-%d.pdf", i-1)); err != nil {
				errs <- fmt.Errorf("remove source: %w", err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent operation failed: %v", err)
	}

	idx, err := s.loan("loan-a", true)
	if err != nil {
		t.Fatalf("loan() error = %v", err)
	}
	idx.mu.RLock()
	entries, vectors := len(idx.entries), len(idx.vectors)
	count := 0
	if idx.collection != nil {
		count = idx.collection.Count()
	}
	idx.mu.RUnlock()
	if entries != vectors || entries != count {
		t.Fatalf("index out of step: entries=%d vectors=%d collection=%d", entries, vectors, count)
	}

	reopened, err := Open(ctx, dir, &hashEmbedder{})
	if err != nil {
		t.Fatalf("reopen after concurrent writes error = %v", err)
	}
	if got := reopened.Stats("loan-a").ChunkCount; got != entries {
		t.Fatalf("reopened store has %d chunks, live store %d", got, entries)
	}
	if got := reopened.Stats("loan-b").ChunkCount; got != 1 {
		t.Fatalf("other loan touched by concurrent writes: %d chunks", got)
	}
}

func TestEqualTextGetsEqualVectors(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "", &hashEmbedder{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	text := "rooftop solar array on the logistics hub"
	if _, err := s.Add(ctx, "loan-a", []domain.DocumentChunk{
		chunk(text, "a.pdf", "report", 0),
		chunk(text, "b.pdf", "report", 0),
	}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	idx, _ := s.loan("loan-a", false)
	if !slices.Equal(idx.vectors[0], idx.vectors[1]) {
		t.Fatalf("equal text stored with different vectors")
	}
	hits, err := s.Search(ctx, domain.SearchQuery{Text: text, LoanID: "loan-a", K: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 || hits[0].Score != hits[1].Score {
		t.Fatalf("expected two equally scored hits, got %+v", hits)
	}
}
