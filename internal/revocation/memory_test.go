package revocation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetAddContains(t *testing.T) {
	ctx := context.Background()
	set := NewMemorySet()

	revoked, err := set.Contains(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, set.Add(ctx, "session-1", time.Hour))
	revoked, err = set.Contains(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Adding the same id again is a no-op, not an error.
	require.NoError(t, set.Add(ctx, "session-1", time.Hour))
	revoked, err = set.Contains(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemorySetExpiredEntry(t *testing.T) {
	ctx := context.Background()
	set := NewMemorySet()

	// A deadline in the past means the token is already expired, so
	// the entry no longer matters.
	require.NoError(t, set.Add(ctx, "session-1", -time.Second))
	revoked, err := set.Contains(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemorySetPrunesOnAdd(t *testing.T) {
	ctx := context.Background()
	set := NewMemorySet()

	require.NoError(t, set.Add(ctx, "stale", -time.Second))
	require.NoError(t, set.Add(ctx, "fresh", time.Hour))

	set.mu.RLock()
	_, stalePresent := set.revoked["stale"]
	set.mu.RUnlock()
	assert.False(t, stalePresent)
}

func TestMemorySetConcurrent(t *testing.T) {
	ctx := context.Background()
	set := NewMemorySet()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		id := fmt.Sprintf("session-%d", i)
		go func() {
			defer wg.Done()
			_ = set.Add(ctx, id, time.Hour)
		}()
		go func() {
			defer wg.Done()
			_, _ = set.Contains(ctx, id)
		}()
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		revoked, err := set.Contains(ctx, fmt.Sprintf("session-%d", i))
		require.NoError(t, err)
		assert.True(t, revoked)
	}
}
