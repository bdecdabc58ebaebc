package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/resilience"
)

const workerGroup = "workers"

type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("green-loan-compliance"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", fmt.Sprint(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishJobSubmitted(ctx context.Context, event domain.JobEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}
	if err := q.executor.Execute(ctx, "nats.publish", call, classifyNATSError); err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeJobSubmitted consumes job events in the shared worker group until
// ctx is cancelled, then drains the subscription.
func (q *Queue) SubscribeJobSubmitted(ctx context.Context, handler func(context.Context, domain.JobEvent) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		handleMessage(ctx, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func handleMessage(ctx context.Context, data []byte, handler func(context.Context, domain.JobEvent) error) {
	event, err := decodeEvent(data)
	if err != nil {
		slog.Error("job_event_rejected", "error", err.Error())
		return
	}

	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := handler(handlerCtx, event); err != nil {
		slog.Error("job_handler_failed", "job_id", event.JobID, "loan_id", event.LoanID, "error", err.Error())
	}
}

func encodeEvent(event domain.JobEvent) ([]byte, error) {
	if event.JobID == "" || event.LoanID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode job event", errors.New("job id and loan id are required"))
	}
	return json.Marshal(event)
}

func decodeEvent(data []byte) (domain.JobEvent, error) {
	var event domain.JobEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return event, domain.WrapError(domain.ErrInvalidInput, "decode job event", err)
	}
	if event.JobID == "" || event.LoanID == "" {
		return event, domain.WrapError(domain.ErrInvalidInput, "decode job event", errors.New("job id and loan id are required"))
	}
	return event, nil
}
