package pkg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aimage-backend/fault"
)

// a burst beyond bucket capacity must wait for refill, not be dropped
func TestAcquireBurstWaits(t *testing.T) {
	gate := NewRateGate(100, 2, time.Second)

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, gate.Acquire(context.Background(), 1))
	}
	elapsed := time.Since(start)

	// two tokens over capacity at 100/s means at least ~20ms of waiting
	assert.GreaterOrEqual(t, elapsed, 15*time.Millisecond)
}

func TestAcquireTimeout(t *testing.T) {
	gate := NewRateGate(0.1, 1, 30*time.Millisecond)

	require.NoError(t, gate.Acquire(context.Background(), 1))

	start := time.Now()
	err := gate.Acquire(context.Background(), 1)
	assert.Equal(t, fault.ErrRateLimitTimeout, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAcquireCallerContext(t *testing.T) {
	gate := NewRateGate(0.1, 1, time.Minute)

	require.NoError(t, gate.Acquire(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := gate.Acquire(ctx, 1)
	assert.Equal(t, fault.ErrRateLimitTimeout, err)
}
