package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockout(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Policy{Threshold: 3, Window: time.Minute, Duration: time.Minute})

	for i := 0; i < 2; i++ {
		locked, err := l.Fail(ctx, "keeper")
		require.NoError(t, err)
		assert.False(t, locked)
	}

	locked, err := l.Fail(ctx, "keeper")
	require.NoError(t, err)
	assert.True(t, locked)

	isLocked, err := l.IsLocked(ctx, "keeper")
	require.NoError(t, err)
	assert.True(t, isLocked)

	// Another account is unaffected.
	isLocked, err = l.IsLocked(ctx, "other")
	require.NoError(t, err)
	assert.False(t, isLocked)

	require.NoError(t, l.Clear(ctx, "keeper"))
	isLocked, err = l.IsLocked(ctx, "keeper")
	require.NoError(t, err)
	assert.False(t, isLocked)
}

func TestMemoryLockoutWindowExpiry(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Policy{Threshold: 2, Window: time.Minute, Duration: time.Minute})

	now := time.Now()
	l.now = func() time.Time { return now }

	locked, err := l.Fail(ctx, "keeper")
	require.NoError(t, err)
	assert.False(t, locked)

	// The window elapses; the counter restarts.
	now = now.Add(2 * time.Minute)
	locked, err = l.Fail(ctx, "keeper")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestMemoryLockoutLockExpiry(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Policy{Threshold: 1, Window: time.Minute, Duration: time.Minute})

	now := time.Now()
	l.now = func() time.Time { return now }

	locked, err := l.Fail(ctx, "keeper")
	require.NoError(t, err)
	assert.True(t, locked)

	now = now.Add(2 * time.Minute)
	isLocked, err := l.IsLocked(ctx, "keeper")
	require.NoError(t, err)
	assert.False(t, isLocked)
}
