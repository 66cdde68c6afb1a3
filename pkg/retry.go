package pkg

import (
	"context"
	"errors"
	"log"
	"time"

	"aimage-backend/fault"
)

// TransientError marks a provider failure worth retrying: an explicit
// rate-limit signal, a 5xx, or a network/timeout error.
type TransientError struct {
	Err error
}

func (e TransientError) Error() string { return e.Err.Error() }
func (e TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err may succeed on a later attempt
func IsTransient(err error) bool {
	var t TransientError
	return errors.As(err, &t)
}

// SleepFunc suspends for d or until ctx is done. Injected so tests can
// simulate time without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the production SleepFunc
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const maxBackoffDelay = 30 * time.Second

// backoffDelay returns baseDelay * 2^attempt, capped
func backoffDelay(baseDelay time.Duration, attempt int) time.Duration {
	d := baseDelay << uint(attempt)
	if d <= 0 || d > maxBackoffDelay {
		return maxBackoffDelay
	}
	return d
}

// TextToImageClient issues a single generation call to the provider
type TextToImageClient interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Artifact, error)
}

// TokenGate admits outbound provider attempts
type TokenGate interface {
	Acquire(ctx context.Context, n int) error
}

// RetryingGenerator wraps the provider client with the shared rate gate
// and a bounded exponential-backoff retry policy. Fatal outcomes (auth
// failure, provider-reported rejection) are never retried.
type RetryingGenerator struct {
	client      TextToImageClient
	gate        TokenGate
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
}

func NewRetryingGenerator(client TextToImageClient, gate TokenGate, maxAttempts int, baseDelay time.Duration) *RetryingGenerator {
	return &RetryingGenerator{
		client:      client,
		gate:        gate,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       SleepContext,
	}
}

// Generate attempts the provider call up to maxAttempts times. One rate
// gate token is consumed before each network attempt, after any backoff
// sleep; nothing is held across the sleep itself.
func (r *RetryingGenerator) Generate(ctx context.Context, req GenerateRequest) ([]Artifact, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, backoffDelay(r.baseDelay, attempt-1)); err != nil {
				return nil, fault.ErrProviderUnavailable
			}
		}
		if err := r.gate.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		artifacts, err := r.client.Generate(ctx, req)
		if err == nil {
			return artifacts, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
		log.Printf("Provider attempt %d/%d failed: %v", attempt+1, r.maxAttempts, err)
	}
	log.Printf("Provider unavailable after %d attempts: %v", r.maxAttempts, lastErr)
	return nil, fault.ErrProviderUnavailable
}
