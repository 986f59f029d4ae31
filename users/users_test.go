package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsurePreservesCounters(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()
	require.NoError(t, reg.Ensure(ctx, User{ID: 1, Username: "old", FirstName: "A"}))

	now := time.Now()
	for i := 0; i < 2; i++ {
		_, err := reg.Warn(ctx, 1, now)
		require.NoError(t, err)
	}

	// re-registration with a new username keeps the warnings
	require.NoError(t, reg.Ensure(ctx, User{ID: 1, Username: "new", FirstName: "A"}))
	u, err := reg.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", u.Username)
	assert.Equal(t, 2, u.Warnings)
}

func TestWarnEscalatesToAutoBlock(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()
	require.NoError(t, reg.Ensure(ctx, User{ID: 1}))
	now := time.Now()

	var u User
	var err error
	for i := 0; i < MaxWarnings; i++ {
		u, err = reg.Warn(ctx, 1, now)
		require.NoError(t, err)
	}
	assert.Zero(t, u.Warnings, "counter resets when the block starts")
	assert.True(t, u.BlockedAt(now))
	assert.True(t, u.BlockedAt(now.Add(AutoBlockFor-time.Minute)))
	assert.False(t, u.BlockedAt(now.Add(AutoBlockFor+time.Minute)), "automatic blocks expire lazily")
}

func TestManualBlockHasNoExpiry(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()
	require.NoError(t, reg.Ensure(ctx, User{ID: 1}))
	require.NoError(t, reg.SetBlocked(ctx, 1, true))

	u, err := reg.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, u.BlockedAt(time.Now().Add(1000*time.Hour)))

	require.NoError(t, reg.SetBlocked(ctx, 1, false))
	u, err = reg.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, u.BlockedAt(time.Now()))
}

func TestUnblockClearsAutoBlock(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()
	require.NoError(t, reg.Ensure(ctx, User{ID: 1}))
	now := time.Now()
	for i := 0; i < MaxWarnings; i++ {
		_, err := reg.Warn(ctx, 1, now)
		require.NoError(t, err)
	}
	require.NoError(t, reg.SetBlocked(ctx, 1, false))

	u, err := reg.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, u.BlockedAt(now))
}

func TestRemoveAndList(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()
	for _, id := range []int64{3, 1, 2} {
		require.NoError(t, reg.Ensure(ctx, User{ID: id}))
	}
	require.NoError(t, reg.Remove(ctx, 2))

	list, err := reg.List(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int64{1, 3}, ids)

	_, err = reg.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWarnUnknownUser(t *testing.T) {
	reg := NewMemoryRegistry()
	_, err := reg.Warn(context.Background(), 404, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}
