package llm

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
)

// LazyEmbedder defers probing the embedding backend until first use.
// Concurrent first callers share one probe; a failed probe is returned to
// each of them and retried by the next call.
type LazyEmbedder struct {
	inner ports.Embedder

	ready atomic.Bool
	mu    sync.Mutex
}

func NewLazyEmbedder(inner ports.Embedder) *LazyEmbedder {
	return &LazyEmbedder{inner: inner}
}

func (l *LazyEmbedder) ensure(ctx context.Context) error {
	if l.ready.Load() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready.Load() {
		return nil
	}
	if _, err := l.inner.EmbedQuery(ctx, "ready"); err != nil {
		return err
	}
	l.ready.Store(true)
	return nil
}

func (l *LazyEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}
	return l.inner.Embed(ctx, texts)
}

func (l *LazyEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}
	return l.inner.EmbedQuery(ctx, text)
}
