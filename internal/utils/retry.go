package utils

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Retry holds the parameters for retrying a flaky operation
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides whether an error is worth another attempt.
	// nil retries every error.
	Retryable func(error) bool
}

// Do runs fn until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done. The delay doubles after each failed attempt.
func (r Retry) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := r.BaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if r.Retryable != nil && !r.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		log.Printf("⚠️  %s failed (attempt %d/%d): %v, retrying in %v", operation, attempt, attempts, lastErr, delay)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}
