package nats

import (
	"github.com/nats-io/nats.go"

	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/resilience"
)

// Connection-level failures are worth another publish attempt; a bad subject
// or an oversized payload is not.
var transientNATSErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
	nats.ErrNoResponders,
}

func classifyNATSError(err error) resilience.ErrorClassification {
	return resilience.ClassifyTransport(err, transientNATSErrors...)
}

func wrapTemporaryIfNeeded(err error) error {
	return resilience.MarkTemporary("publish job event", err, classifyNATSError)
}
