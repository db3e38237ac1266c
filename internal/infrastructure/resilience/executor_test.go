package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func retryingConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestDoRetriesTemporaryFailure(t *testing.T) {
	errTemp := errors.New("temporary")
	exec := New(retryingConfig(), func(err error) Outcome {
		return Outcome{Retry: errors.Is(err, errTemp), TripBreaker: true}
	})

	attempts := 0
	err := exec.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoDoesNotRetryPermanentFailure(t *testing.T) {
	exec := New(retryingConfig(), func(error) Outcome {
		return Outcome{Retry: false, TripBreaker: false}
	})

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	errTemp := errors.New("temporary")
	exec := New(retryingConfig(), func(error) Outcome {
		return Outcome{Retry: true, TripBreaker: true}
	})

	attempts := 0
	err := exec.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		return errTemp
	})
	if !errors.Is(err, errTemp) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoOpensCircuitAfterFailures(t *testing.T) {
	errTemp := errors.New("temporary")
	exec := New(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}, func(error) Outcome {
		return Outcome{Retry: false, TripBreaker: true}
	})

	for i := 0; i < 2; i++ {
		err := exec.Do(context.Background(), "op", func(context.Context) error {
			return errTemp
		})
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Do(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatalf("IsCircuitOpen() = false for open breaker error")
	}
}
