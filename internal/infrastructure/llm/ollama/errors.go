package ollama

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, body)
}

// classifyOllamaError retries network failures, open breakers and 408/429/5xx
// responses. Other status codes are the caller's fault and leave the breaker
// alone.
func classifyOllamaError(err error) resilience.ErrorClassification {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.Transient
		}
		return resilience.Ignored
	}
	return resilience.ClassifyTransport(err)
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	return resilience.MarkTemporary(operation, err, classifyOllamaError)
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
