package gemini

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/amoghv/rollscan/internal/core/domain"
	"github.com/amoghv/rollscan/internal/infrastructure/resilience"
)

func classifyGeminiError(err error) resilience.Outcome {
	if err == nil {
		return resilience.Outcome{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Outcome{Retry: false, TripBreaker: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Outcome{Retry: true, TripBreaker: true}
	}
	if errors.Is(err, errEmptyResponse) {
		return resilience.Outcome{Retry: true, TripBreaker: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.Outcome{
			Retry:       isRetryableHTTPStatus(statusErr.StatusCode),
			TripBreaker: isRetryableHTTPStatus(statusErr.StatusCode),
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Outcome{Retry: true, TripBreaker: true}
	}

	return resilience.Outcome{Retry: false, TripBreaker: true}
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyGeminiError(err).Retry || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
