package chromemindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

// A loan snapshot is one generation of files, <loan>.<gen>.chromem and
// <loan>.<gen>.meta.json, plus <loan>.head naming the current generation.
// Renaming the head is the commit point: a process reading the head never
// pairs vectors and metadata from different writes.
const (
	headSuffix   = ".head"
	vectorSuffix = ".chromem"
	metaSuffix   = ".meta.json"
	tmpSuffix    = ".tmp"
)

type snapshotMeta struct {
	LoanID     string                `json:"loan_id"`
	Generation string                `json:"generation"`
	Entries    []domain.IndexedChunk `json:"entries"`
}

// errGenerationMoved reports a generation replaced by another writer while
// it was being read.
var errGenerationMoved = errors.New("snapshot generation moved")

func snapshotBase(loanID string) string {
	return url.PathEscape(loanID)
}

func (s *Store) headPath(loanID string) string {
	return filepath.Join(s.dir, snapshotBase(loanID)+headSuffix)
}

func (s *Store) generationPath(loanID, gen, suffix string) string {
	return filepath.Join(s.dir, snapshotBase(loanID)+"."+gen+suffix)
}

// diskGeneration returns the committed generation, or "" when the loan has
// no snapshot.
func (s *Store) diskGeneration(loanID string) (string, error) {
	raw, err := os.ReadFile(s.headPath(loanID))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read snapshot head: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// diskLoans lists the loan ids that have a committed snapshot in s.dir.
func (s *Store) diskLoans() ([]string, error) {
	if s.dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read index dir: %w", err)
	}
	var loans []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, headSuffix) {
			continue
		}
		loanID, err := url.PathUnescape(strings.TrimSuffix(name, headSuffix))
		if err != nil {
			continue
		}
		loans = append(loans, loanID)
	}
	return loans, nil
}

// sync brings idx to the generation committed on disk. A generation that
// moves while being read leaves idx untouched; the next call retries.
// Callers hold idx.mu for writing.
func (s *Store) sync(ctx context.Context, idx *loanIndex) error {
	if s.dir == "" {
		return nil
	}
	gen, err := s.diskGeneration(idx.loanID)
	if err != nil {
		return err
	}
	if gen == idx.generation {
		return nil
	}
	if gen == "" {
		idx.loanState = loanState{}
		return nil
	}
	state, err := s.load(ctx, idx.loanID, gen)
	if errors.Is(err, errGenerationMoved) {
		return nil
	}
	if err != nil {
		return err
	}
	idx.loanState = state
	return nil
}

// load reads one generation into a fresh chromem DB. A snapshot whose
// vector count differs from its metadata length is rejected.
func (s *Store) load(ctx context.Context, loanID, gen string) (loanState, error) {
	metaPath := s.generationPath(loanID, gen, metaSuffix)
	raw, err := os.ReadFile(metaPath)
	if errors.Is(err, os.ErrNotExist) {
		return loanState{}, errGenerationMoved
	}
	if err != nil {
		return loanState{}, fmt.Errorf("read snapshot metadata: %w", err)
	}
	var meta snapshotMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return loanState{}, fmt.Errorf("decode snapshot metadata %s: %w", metaPath, err)
	}
	if meta.LoanID != loanID {
		return loanState{}, fmt.Errorf("snapshot %s belongs to loan %q", metaPath, meta.LoanID)
	}

	name := collectionName(loanID)
	vectorPath := s.generationPath(loanID, gen, vectorSuffix)
	db := chromem.NewDB()
	if err := db.ImportFromFile(vectorPath, "", name); err != nil {
		if _, statErr := os.Stat(vectorPath); errors.Is(statErr, os.ErrNotExist) {
			return loanState{}, errGenerationMoved
		}
		return loanState{}, fmt.Errorf("import snapshot %s: %w", vectorPath, err)
	}
	collection := db.GetCollection(name, s.embeddingFunc())
	if collection == nil {
		return loanState{}, fmt.Errorf("snapshot %s has no collection %s", vectorPath, name)
	}
	if collection.Count() != len(meta.Entries) {
		return loanState{}, fmt.Errorf("snapshot %s: %d vectors for %d metadata entries", vectorPath, collection.Count(), len(meta.Entries))
	}

	vectors := make([][]float32, len(meta.Entries))
	for pos := range meta.Entries {
		doc, err := collection.GetByID(ctx, docID(pos))
		if err != nil {
			return loanState{}, fmt.Errorf("snapshot %s: load vector %d: %w", vectorPath, pos, err)
		}
		if len(doc.Embedding) != s.dim {
			return loanState{}, fmt.Errorf("snapshot %s: vector dimension %d, embedder has %d", vectorPath, len(doc.Embedding), s.dim)
		}
		vectors[pos] = doc.Embedding
	}

	return loanState{
		db:         db,
		collection: collection,
		entries:    meta.Entries,
		vectors:    vectors,
		generation: gen,
	}, nil
}

// persist commits idx as a new generation. It refuses to replace a
// generation idx has not seen, so a stale process cannot overwrite a newer
// snapshot. Callers hold idx.mu for writing.
func (s *Store) persist(idx *loanIndex) error {
	if s.dir == "" {
		return nil
	}
	current, err := s.diskGeneration(idx.loanID)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "persist loan index", err)
	}
	if current != idx.generation {
		return domain.WrapError(domain.ErrTemporary, "persist loan index",
			fmt.Errorf("loan %s was updated by another process", idx.loanID))
	}

	if len(idx.entries) == 0 {
		if err := os.Remove(s.headPath(idx.loanID)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return domain.WrapError(domain.ErrTemporary, "persist loan index", err)
		}
		s.removeGeneration(idx.loanID, current)
		idx.generation = ""
		return nil
	}

	gen := uuid.NewString()
	if err := s.writeGeneration(idx, gen); err != nil {
		s.removeGeneration(idx.loanID, gen)
		return domain.WrapError(domain.ErrTemporary, "persist loan index", err)
	}
	head := s.headPath(idx.loanID)
	if err := os.WriteFile(head+tmpSuffix, []byte(gen), 0o644); err != nil {
		s.removeGeneration(idx.loanID, gen)
		return domain.WrapError(domain.ErrTemporary, "persist loan index", err)
	}
	if err := os.Rename(head+tmpSuffix, head); err != nil {
		s.removeGeneration(idx.loanID, gen)
		return domain.WrapError(domain.ErrTemporary, "persist loan index", err)
	}
	s.removeGeneration(idx.loanID, current)
	idx.generation = gen
	return nil
}

func (s *Store) writeGeneration(idx *loanIndex, gen string) error {
	if err := idx.db.ExportToFile(s.generationPath(idx.loanID, gen, vectorSuffix), false, "", idx.name); err != nil {
		return fmt.Errorf("export %s: %w", idx.name, err)
	}
	raw, err := json.Marshal(snapshotMeta{LoanID: idx.loanID, Generation: gen, Entries: idx.entries})
	if err != nil {
		return fmt.Errorf("marshal snapshot metadata: %w", err)
	}
	return os.WriteFile(s.generationPath(idx.loanID, gen, metaSuffix), raw, 0o644)
}

func (s *Store) removeGeneration(loanID, gen string) {
	if gen == "" {
		return
	}
	for _, suffix := range []string{vectorSuffix, metaSuffix} {
		path := s.generationPath(loanID, gen, suffix)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("index_snapshot_cleanup_failed", "loan_id", loanID, "path", path, "error", err.Error())
		}
	}
}
