package llm

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type countingEmbedder struct {
	probes atomic.Int32
	fail   atomic.Bool
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func (c *countingEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if text == "ready" {
		c.probes.Add(1)
		if c.fail.Load() {
			return nil, errors.New("backend down")
		}
	}
	return []float32{1}, nil
}

// letterEmbedder counts letters, so equal text always gives equal vectors.
type letterEmbedder struct{}

func (letterEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = letterEmbedder{}.EmbedQuery(ctx, text)
	}
	return out, nil
}

func (letterEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v, nil
}

func TestLazyEmbedderIsDeterministic(t *testing.T) {
	lazy := NewLazyEmbedder(letterEmbedder{})
	ctx := context.Background()
	text := "Solar farm construction with emission reduction targets"

	first, err := lazy.EmbedQuery(ctx, text)
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	second, err := lazy.EmbedQuery(ctx, text)
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("repeated query embeddings differ: %v vs %v", first, second)
	}

	batch, err := lazy.Embed(ctx, []string{text, "other text", text})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if !slices.Equal(batch[0], first) || !slices.Equal(batch[2], first) {
		t.Fatalf("batch embedding differs from query embedding for the same text")
	}
	if slices.Equal(batch[1], first) {
		t.Fatalf("different text produced the same vector")
	}
}

func TestLazyEmbedderProbesOnce(t *testing.T) {
	inner := &countingEmbedder{}
	lazy := NewLazyEmbedder(inner)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lazy.EmbedQuery(context.Background(), "q"); err != nil {
				t.Errorf("EmbedQuery() error = %v", err)
			}
		}()
	}
	wg.Wait()
	if got := inner.probes.Load(); got != 1 {
		t.Fatalf("expected one probe, got %d", got)
	}
}

func TestLazyEmbedderRetriesFailedProbe(t *testing.T) {
	inner := &countingEmbedder{}
	inner.fail.Store(true)
	lazy := NewLazyEmbedder(inner)

	if _, err := lazy.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatalf("expected probe failure")
	}
	inner.fail.Store(false)
	if _, err := lazy.Embed(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if got := inner.probes.Load(); got != 2 {
		t.Fatalf("expected two probes, got %d", got)
	}
}

func TestParseSpan(t *testing.T) {
	span, err := ParseSpan("here you go {\"answer\": \"wind farm\", \"score\": 0.6}", "A wind farm in the north.")
	if err != nil {
		t.Fatalf("ParseSpan() error = %v", err)
	}
	if span.Answer != "wind farm" || span.Score != 0.6 {
		t.Fatalf("unexpected span %+v", span)
	}
	if got := ScoreSpan("hydro dam", 0.6, "A wind farm."); got.Score != 0.3 {
		t.Fatalf("expected halved score, got %v", got.Score)
	}
	if got := ScoreSpan("x", 7, "x"); got.Score != 1 {
		t.Fatalf("expected clamp to 1, got %v", got.Score)
	}
	if _, err := ParseSpan("no json", "ctx"); err == nil {
		t.Fatalf("expected parse error")
	}
}
