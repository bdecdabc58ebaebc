package chunking

import (
	"fmt"
	"strings"
	"testing"
)

func numberedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestSplitProducesOverlappingWindows(t *testing.T) {
	words := numberedWords(1200)
	s := NewSplitter(1000, 200)

	chunks := s.Split(strings.Join(words, " "))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != strings.Join(words[0:1000], " ") {
		t.Fatalf("first chunk should cover words [0:1000]")
	}
	if chunks[1] != strings.Join(words[800:1200], " ") {
		t.Fatalf("second chunk should cover words [800:1200]")
	}
}

func TestSplitCoversEveryWord(t *testing.T) {
	words := numberedWords(2537)
	s := NewSplitter(300, 50)

	seen := make(map[string]bool, len(words))
	for _, chunk := range s.Split(strings.Join(words, "\n\t ")) {
		for _, w := range strings.Fields(chunk) {
			seen[w] = true
		}
	}
	for _, w := range words {
		if !seen[w] {
			t.Fatalf("word %s missing from chunks", w)
		}
	}
}

func TestSplitShortAndEmptyText(t *testing.T) {
	s := NewSplitter(1000, 200)
	if got := s.Split("   \n "); len(got) != 0 {
		t.Fatalf("expected no chunks for blank text, got %d", len(got))
	}
	got := s.Split("solar   farm\nfinancing")
	if len(got) != 1 || got[0] != "solar farm financing" {
		t.Fatalf("expected single collapsed chunk, got %#v", got)
	}
}

func TestNewSplitterNormalizesOverlap(t *testing.T) {
	s := NewSplitter(100, 100)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("overlap %d must stay below chunk size %d", s.Overlap, s.ChunkSize)
	}
	d := NewSplitter(0, -1)
	if d.ChunkSize != DefaultChunkSize || d.Overlap != 0 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}

func TestChunkCarriesSourceMetadata(t *testing.T) {
	s := NewSplitter(2, 1)
	chunks := s.Chunk("a b c", "report.pdf", "esg_report")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.ChunkIndex != i || c.SourceFile != "report.pdf" || c.DocType != "esg_report" {
			t.Fatalf("unexpected chunk metadata: %+v", c)
		}
	}
}
