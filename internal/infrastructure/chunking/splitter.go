package chunking

import (
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Splitter cuts text into windows of ChunkSize words where consecutive
// windows share Overlap words.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Chunk(text, source, docType string) []domain.DocumentChunk {
	windows := s.Split(text)
	out := make([]domain.DocumentChunk, 0, len(windows))
	for idx, window := range windows {
		out = append(out, domain.DocumentChunk{
			Text:       window,
			ChunkIndex: idx,
			SourceFile: source,
			DocType:    docType,
		})
	}
	return out
}

// Split returns the word windows joined by single spaces.
func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	n := len(words)
	if n == 0 {
		return nil
	}

	out := make([]string, 0, n/(s.ChunkSize-s.Overlap)+1)
	for start := 0; ; {
		end := min(start+s.ChunkSize, n)
		out = append(out, strings.Join(words[start:end], " "))
		if end == n {
			break
		}
		start = end - s.Overlap
	}
	return out
}
