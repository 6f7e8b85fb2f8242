package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenBlocked(t *testing.T) {
	rl := New(1, 3)
	defer rl.Stop()

	allowed := 0
	for range 6 {
		if rl.Allow("203.0.113.1") {
			allowed++
		}
	}

	// Only the burst passes; refill at 1 rps is too slow to matter here.
	assert.Equal(t, 3, allowed)
}

func TestAllow_KeysDoNotShareBuckets(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	require.True(t, rl.Allow("203.0.113.1"))
	assert.False(t, rl.Allow("203.0.113.1"))
	assert.True(t, rl.Allow("203.0.113.2"))
}

func TestWait_BlocksUntilRefill(t *testing.T) {
	rl := New(20, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "openlibrary.org"))

	// Second acquisition has to wait roughly one refill interval (50ms at 20 rps).
	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "openlibrary.org"))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWait_RespectsContextCancellation(t *testing.T) {
	rl := New(0.01, 1)
	defer rl.Stop()

	require.True(t, rl.Allow("openlibrary.org"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx, "openlibrary.org")
	assert.Error(t, err)
}

func TestStop_Idempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	rl.Stop()
}
