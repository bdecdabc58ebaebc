// Package inline delivers job events to a handler in the publishing
// goroutine. The CLI uses it to run ingestion without a broker.
package inline

import (
	"context"
	"errors"
	"sync"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type Queue struct {
	mu      sync.RWMutex
	handler func(context.Context, domain.JobEvent) error
}

func New() *Queue {
	return &Queue{}
}

// PublishJobSubmitted runs the subscribed handler and returns its error.
func (q *Queue) PublishJobSubmitted(ctx context.Context, event domain.JobEvent) error {
	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()
	if handler == nil {
		return domain.WrapError(domain.ErrUnavailable, "inline publish", errors.New("no subscriber"))
	}
	return handler(ctx, event)
}

// SubscribeJobSubmitted registers handler and returns immediately.
func (q *Queue) SubscribeJobSubmitted(_ context.Context, handler func(context.Context, domain.JobEvent) error) error {
	if handler == nil {
		return domain.WrapError(domain.ErrInvalidInput, "inline subscribe", errors.New("handler is nil"))
	}
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
	return nil
}
