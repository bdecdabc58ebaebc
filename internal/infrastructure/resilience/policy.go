package resilience

import (
	"context"
	"errors"
	"math"
	"net"
	"time"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

// Config is the retry and breaker policy shared by model and queue calls.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     400 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// normalize replaces unset or out-of-range values with defaults.
func (c Config) normalize() Config {
	def := DefaultConfig()
	out := c

	out.RetryMaxAttempts = positiveOr(out.RetryMaxAttempts, def.RetryMaxAttempts)
	out.RetryInitialBackoff = positiveOr(out.RetryInitialBackoff, def.RetryInitialBackoff)
	out.RetryMaxBackoff = max(positiveOr(out.RetryMaxBackoff, def.RetryMaxBackoff), out.RetryInitialBackoff)
	if out.RetryMultiplier < 1 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	out.BreakerMinRequests = positiveOr(out.BreakerMinRequests, def.BreakerMinRequests)
	out.BreakerOpenTimeout = positiveOr(out.BreakerOpenTimeout, def.BreakerOpenTimeout)
	out.BreakerHalfOpenMaxCalls = positiveOr(out.BreakerHalfOpenMaxCalls, def.BreakerHalfOpenMaxCalls)
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	return out
}

// backoff is the wait after the given failed attempt (1-based), capped at
// RetryMaxBackoff.
func (c Config) backoff(attempt int) time.Duration {
	wait := float64(c.RetryInitialBackoff) * math.Pow(c.RetryMultiplier, float64(attempt-1))
	if wait >= float64(c.RetryMaxBackoff) {
		return c.RetryMaxBackoff
	}
	return time.Duration(wait)
}

func positiveOr[T int | uint32 | time.Duration](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
}

var (
	// Transient failures are retried and count against the breaker.
	Transient = ErrorClassification{Retryable: true, RecordFailure: true}
	// Ignored failures are returned as is and leave the breaker untouched.
	Ignored = ErrorClassification{}
	// Permanent failures are not retried but trip the breaker.
	Permanent = ErrorClassification{RecordFailure: true}
)

// ClassifyTransport holds the rules every outbound adapter shares: caller
// cancellation is ignored, open breakers and network errors are transient.
// Errors matching one of transient are transient too; the rest are permanent.
func ClassifyTransport(err error, transient ...error) ErrorClassification {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Ignored
	}
	if IsCircuitOpen(err) {
		return Transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient
	}
	for _, target := range transient {
		if errors.Is(err, target) {
			return Transient
		}
	}
	return Permanent
}

// MarkTemporary wraps retryable failures as domain.ErrTemporary so callers
// can map them to 503 or retry later.
func MarkTemporary(operation string, err error, classify ErrorClassifier) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classify(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
