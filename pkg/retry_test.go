package pkg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aimage-backend/fault"
)

type scriptedClient struct {
	calls   int
	outcome []error
}

func (c *scriptedClient) Generate(ctx context.Context, req GenerateRequest) ([]Artifact, error) {
	err := c.outcome[c.calls]
	c.calls++
	if err != nil {
		return nil, err
	}
	return []Artifact{{Base64: "cGF5bG9hZA==", FinishReason: "SUCCESS"}}, nil
}

type countingGate struct {
	acquired int
	err      error
}

func (g *countingGate) Acquire(ctx context.Context, n int) error {
	if g.err != nil {
		return g.err
	}
	g.acquired += n
	return nil
}

func newTestGenerator(client TextToImageClient, gate TokenGate, maxAttempts int) (*RetryingGenerator, *[]time.Duration) {
	gen := NewRetryingGenerator(client, gate, maxAttempts, 100*time.Millisecond)
	slept := &[]time.Duration{}
	gen.sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return gen, slept
}

// two transient failures then success: three attempts, three tokens,
// exponential backoff between attempts
func TestRetryTransientThenSuccess(t *testing.T) {
	transient := TransientError{Err: errors.New("provider error (status 500)")}
	client := &scriptedClient{outcome: []error{transient, transient, nil}}
	gate := &countingGate{}
	gen, slept := newTestGenerator(client, gate, 3)

	artifacts, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
	require.NoError(t, err)
	assert.Len(t, artifacts, 1)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 3, gate.acquired)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *slept)
}

// auth failures are fatal: one attempt, no sleep
func TestRetryAuthFailureNoRetry(t *testing.T) {
	client := &scriptedClient{outcome: []error{fault.ErrProviderAuthFailed}}
	gate := &countingGate{}
	gen, slept := newTestGenerator(client, gate, 3)

	_, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
	assert.Equal(t, fault.ErrProviderAuthFailed, err)
	assert.Equal(t, 1, client.calls)
	assert.Empty(t, *slept)
}

func TestRetryRejectionNoRetry(t *testing.T) {
	client := &scriptedClient{outcome: []error{fault.ErrProviderRejected}}
	gen, _ := newTestGenerator(client, &countingGate{}, 3)

	_, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
	assert.Equal(t, fault.ErrProviderRejected, err)
	assert.Equal(t, 1, client.calls)
}

func TestRetryExhaustion(t *testing.T) {
	transient := TransientError{Err: errors.New("provider rate limited (status 429)")}
	client := &scriptedClient{outcome: []error{transient, transient, transient}}
	gate := &countingGate{}
	gen, _ := newTestGenerator(client, gate, 3)

	_, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
	assert.Equal(t, fault.ErrProviderUnavailable, err)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 3, gate.acquired)
}

// a gate timeout aborts before any network attempt
func TestRetryGateTimeout(t *testing.T) {
	client := &scriptedClient{outcome: []error{nil}}
	gate := &countingGate{err: fault.ErrRateLimitTimeout}
	gen, _ := newTestGenerator(client, gate, 3)

	_, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
	assert.Equal(t, fault.ErrRateLimitTimeout, err)
	assert.Equal(t, 0, client.calls)
}

func TestBackoffDelayCapped(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, backoffDelay(100*time.Millisecond, 0))
	assert.Equal(t, 400*time.Millisecond, backoffDelay(100*time.Millisecond, 2))
	assert.Equal(t, maxBackoffDelay, backoffDelay(time.Second, 20))
	assert.Equal(t, maxBackoffDelay, backoffDelay(time.Second, 200))
}
