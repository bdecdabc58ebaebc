// Package chromemindex keeps one chromem-go collection per loan together with
// the chunk metadata stored alongside each vector. Snapshots are written per
// loan so a restart, or another process sharing the directory, sees every
// index without re-embedding.
package chromemindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
)

const probeText = "dimension probe"

// loanState is everything one loan index holds. A zero loanState is an
// empty loan with no collection.
type loanState struct {
	db         *chromem.DB
	collection *chromem.Collection
	entries    []domain.IndexedChunk
	vectors    [][]float32
	generation string
}

// loanIndex is registered once per loan id and never replaced, so mu
// serializes every add, clear, rebuild and search of that loan.
type loanIndex struct {
	mu     sync.RWMutex
	loanID string
	name   string
	loanState
}

type Store struct {
	embedder ports.Embedder
	dir      string
	dim      int

	mu    sync.Mutex
	loans map[string]*loanIndex
}

// Open probes the embedder for its dimension and loads every loan snapshot
// found in dir. An empty dir keeps the store in memory only.
func Open(ctx context.Context, dir string, embedder ports.Embedder) (*Store, error) {
	probe, err := embedder.EmbedQuery(ctx, probeText)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnavailable, "probe embedder", err)
	}
	if len(probe) == 0 {
		return nil, domain.WrapError(domain.ErrUnavailable, "probe embedder", errors.New("empty embedding"))
	}

	s := &Store{
		embedder: embedder,
		dir:      dir,
		dim:      len(probe),
		loans:    make(map[string]*loanIndex),
	}
	if dir == "" {
		return s, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	loans, err := s.allLoans()
	if err != nil {
		return nil, err
	}
	for _, idx := range loans {
		idx.mu.Lock()
		err := s.sync(ctx, idx)
		idx.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dimension is the embedding size every stored vector has.
func (s *Store) Dimension() int {
	return s.dim
}

func (s *Store) Add(ctx context.Context, loanID string, chunks []domain.DocumentChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}
	for i := range vectors {
		if len(vectors[i]) != s.dim {
			return 0, domain.WrapError(domain.ErrInvalidInput, "embed chunks",
				fmt.Errorf("vector dimension %d, index expects %d", len(vectors[i]), s.dim))
		}
		vectors[i] = normalize(vectors[i])
	}

	idx, err := s.loan(loanID, true)
	if err != nil {
		return 0, err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := s.sync(ctx, idx); err != nil {
		return 0, err
	}

	prev := idx.loanState
	if idx.collection == nil {
		if err := s.newCollection(idx); err != nil {
			return 0, err
		}
	}

	start := len(idx.entries)
	entries := make([]domain.IndexedChunk, len(chunks))
	for i, c := range chunks {
		entries[i] = domain.IndexedChunk{
			LoanID:     loanID,
			ChunkIndex: c.ChunkIndex,
			Text:       c.Text,
			Source:     c.SourceFile,
			DocType:    c.DocType,
			Page:       c.Page,
		}
	}
	rollback := func() {
		if prev.collection != nil {
			ids := make([]string, len(entries))
			for i := range entries {
				ids[i] = docID(start + i)
			}
			_ = prev.collection.Delete(ctx, nil, nil, ids...)
		}
		idx.loanState = prev
	}
	if err := idx.collection.AddDocuments(ctx, documents(entries, vectors, start), runtime.NumCPU()); err != nil {
		rollback()
		return 0, fmt.Errorf("add documents to collection: %w", err)
	}
	idx.entries = append(idx.entries, entries...)
	idx.vectors = append(idx.vectors, vectors...)

	if err := s.persist(idx); err != nil {
		rollback()
		return 0, err
	}
	return len(chunks), nil
}

func (s *Store) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchHit, error) {
	if query.K <= 0 {
		return []domain.SearchHit{}, nil
	}
	vector, err := s.embedder.EmbedQuery(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vector) != s.dim {
		return nil, domain.WrapError(domain.ErrInvalidInput, "embed query",
			fmt.Errorf("vector dimension %d, index expects %d", len(vector), s.dim))
	}
	vector = normalize(vector)

	var targets []*loanIndex
	if query.LoanID != "" {
		idx, err := s.loan(query.LoanID, false)
		if err != nil {
			return nil, err
		}
		if idx == nil {
			return []domain.SearchHit{}, nil
		}
		targets = append(targets, idx)
	} else {
		targets, err = s.allLoans()
		if err != nil {
			return nil, err
		}
	}

	hits := make([]domain.SearchHit, 0, query.K)
	for _, idx := range targets {
		if err := s.readLock(ctx, idx); err != nil {
			return nil, err
		}
		found, err := idx.search(ctx, vector, query)
		idx.mu.RUnlock()
		if err != nil {
			return nil, err
		}
		hits = append(hits, found...)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > query.K {
		hits = hits[:query.K]
	}
	return hits, nil
}

// search runs under idx.mu held for reading.
func (idx *loanIndex) search(ctx context.Context, vector []float32, query domain.SearchQuery) ([]domain.SearchHit, error) {
	if idx.collection == nil {
		return nil, nil
	}
	n := min(query.K*3, idx.collection.Count())
	if n == 0 {
		return nil, nil
	}
	results, err := idx.collection.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", idx.name, err)
	}

	hits := make([]domain.SearchHit, 0, query.K)
	for _, r := range results {
		pos, err := strconv.Atoi(r.ID)
		if err != nil || pos < 0 || pos >= len(idx.entries) {
			continue
		}
		e := idx.entries[pos]
		if query.LoanID != "" && e.LoanID != query.LoanID {
			continue
		}
		if query.DocType != "" && e.DocType != query.DocType {
			continue
		}
		hits = append(hits, domain.SearchHit{
			Text:       e.Text,
			Source:     e.Source,
			Score:      float64(r.Similarity),
			LoanID:     e.LoanID,
			DocType:    e.DocType,
			ChunkIndex: e.ChunkIndex,
			Page:       e.Page,
		})
		if len(hits) == query.K {
			break
		}
	}
	return hits, nil
}

// Clear drops every chunk of a loan and its snapshot.
func (s *Store) Clear(ctx context.Context, loanID string) (int, error) {
	idx, err := s.loan(loanID, false)
	if err != nil || idx == nil {
		return 0, err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := s.sync(ctx, idx); err != nil {
		return 0, err
	}

	removed := len(idx.entries)
	if removed == 0 {
		return 0, nil
	}
	prev := idx.loanState
	idx.loanState = loanState{generation: prev.generation}
	if err := s.persist(idx); err != nil {
		idx.loanState = prev
		return 0, err
	}
	return removed, nil
}

// RemoveSource drops one document's chunks and rebuilds the loan index from
// the surviving stored vectors.
func (s *Store) RemoveSource(ctx context.Context, loanID, source string) (int, error) {
	idx, err := s.loan(loanID, false)
	if err != nil || idx == nil {
		return 0, err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := s.sync(ctx, idx); err != nil {
		return 0, err
	}

	keptEntries := make([]domain.IndexedChunk, 0, len(idx.entries))
	keptVectors := make([][]float32, 0, len(idx.vectors))
	for i, e := range idx.entries {
		if e.Source == source {
			continue
		}
		keptEntries = append(keptEntries, e)
		keptVectors = append(keptVectors, idx.vectors[i])
	}
	removed := len(idx.entries) - len(keptEntries)
	if removed == 0 {
		return 0, nil
	}

	prev := idx.loanState
	if err := s.rebuild(ctx, idx, keptEntries, keptVectors); err != nil {
		idx.loanState = prev
		return 0, err
	}
	if err := s.persist(idx); err != nil {
		idx.loanState = prev
		return 0, err
	}
	return removed, nil
}

// rebuild replaces the loan's collection with a fresh one holding entries.
func (s *Store) rebuild(ctx context.Context, idx *loanIndex, entries []domain.IndexedChunk, vectors [][]float32) error {
	idx.entries, idx.vectors = entries, vectors
	if len(entries) == 0 {
		idx.db, idx.collection = nil, nil
		return nil
	}
	if err := s.newCollection(idx); err != nil {
		return err
	}
	if err := idx.collection.AddDocuments(ctx, documents(entries, vectors, 0), runtime.NumCPU()); err != nil {
		return fmt.Errorf("re-add documents to collection %s: %w", idx.name, err)
	}
	return nil
}

func (s *Store) newCollection(idx *loanIndex) error {
	db := chromem.NewDB()
	collection, err := db.CreateCollection(idx.name, map[string]string{"loan_id": idx.loanID}, s.embeddingFunc())
	if err != nil {
		return fmt.Errorf("create collection %s: %w", idx.name, err)
	}
	idx.db, idx.collection = db, collection
	return nil
}

func (s *Store) Stats(loanID string) domain.LoanIndexStats {
	stats := domain.LoanIndexStats{LoanID: loanID, Sources: []string{}}
	idx, _ := s.loan(loanID, false)
	if idx == nil {
		return stats
	}
	if err := s.readLock(context.Background(), idx); err != nil {
		slog.Warn("index_stats_sync_failed", "loan_id", loanID, "error", err.Error())
		return stats
	}
	defer idx.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, e := range idx.entries {
		if _, ok := seen[e.Source]; ok {
			continue
		}
		seen[e.Source] = struct{}{}
		stats.Sources = append(stats.Sources, e.Source)
	}
	sort.Strings(stats.Sources)
	stats.ChunkCount = len(idx.entries)
	return stats
}

func (s *Store) GlobalStats() domain.IndexStats {
	var stats domain.IndexStats
	loans, err := s.allLoans()
	if err != nil {
		slog.Warn("index_stats_sync_failed", "error", err.Error())
	}
	for _, idx := range loans {
		if err := s.readLock(context.Background(), idx); err != nil {
			slog.Warn("index_stats_sync_failed", "loan_id", idx.loanID, "error", err.Error())
			continue
		}
		n := len(idx.entries)
		idx.mu.RUnlock()
		if n == 0 {
			continue
		}
		stats.TotalChunks += n
		stats.UniqueLoans++
	}
	return stats
}

// readLock syncs idx with disk and returns with idx.mu held for reading.
func (s *Store) readLock(ctx context.Context, idx *loanIndex) error {
	if s.dir != "" {
		idx.mu.Lock()
		err := s.sync(ctx, idx)
		idx.mu.Unlock()
		if err != nil {
			return err
		}
	}
	idx.mu.RLock()
	return nil
}

// loan returns the registered index for loanID. Without create it only
// registers loans that have a snapshot on disk.
func (s *Store) loan(loanID string, create bool) (*loanIndex, error) {
	if strings.TrimSpace(loanID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "loan index", errors.New("loan id is required"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.loans[loanID]; ok {
		return idx, nil
	}
	if !create {
		if s.dir == "" {
			return nil, nil
		}
		if _, err := os.Stat(s.headPath(loanID)); err != nil {
			return nil, nil
		}
	}
	return s.register(loanID), nil
}

// register adds an empty index for loanID. Callers hold s.mu.
func (s *Store) register(loanID string) *loanIndex {
	idx := &loanIndex{loanID: loanID, name: collectionName(loanID)}
	s.loans[loanID] = idx
	return idx
}

// allLoans registers loans found on disk and returns every known index.
func (s *Store) allLoans() ([]*loanIndex, error) {
	onDisk, err := s.diskLoans()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, loanID := range onDisk {
		if _, ok := s.loans[loanID]; !ok {
			s.register(loanID)
		}
	}
	out := make([]*loanIndex, 0, len(s.loans))
	for _, idx := range s.loans {
		out = append(out, idx)
	}
	return out, err
}

// embeddingFunc is only reached if chromem is handed a document without a
// precomputed embedding.
func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		v, err := s.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		return normalize(v), nil
	}
}

func documents(entries []domain.IndexedChunk, vectors [][]float32, offset int) []chromem.Document {
	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromem.Document{
			ID:        docID(offset + i),
			Content:   e.Text,
			Embedding: vectors[i],
			Metadata: map[string]string{
				"loan_id":  e.LoanID,
				"source":   e.Source,
				"doc_type": e.DocType,
			},
		}
	}
	return docs
}

func docID(pos int) string {
	return strconv.Itoa(pos)
}

func collectionName(loanID string) string {
	return "loan_" + loanID
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
