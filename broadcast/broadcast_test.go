package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/teamhackers/boardbooster/users"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []int64
	fail map[int64]error
}

func (f *fakeSender) Send(_ context.Context, userID int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[userID]; ok {
		return err
	}
	f.sent = append(f.sent, userID)
	return nil
}

func TestSendAllRemovesPermanentFailures(t *testing.T) {
	ctx := context.Background()
	reg := users.NewMemoryRegistry()
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, reg.Ensure(ctx, users.User{ID: id}))
	}
	fs := &fakeSender{fail: map[int64]error{2: tele.ErrBlockedByUser}}

	res, err := New(reg, fs, 2).SendAll(ctx, "new content!")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Removed)
	assert.Zero(t, res.Failed)

	list, err := reg.List(ctx)
	require.NoError(t, err)
	ids := make([]int64, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []int64{1, 3}, ids, "blocked recipient must be forgotten")
}

func TestSendAllKeepsTransientFailures(t *testing.T) {
	ctx := context.Background()
	reg := users.NewMemoryRegistry()
	for _, id := range []int64{1, 2} {
		require.NoError(t, reg.Ensure(ctx, users.User{ID: id}))
	}
	fs := &fakeSender{fail: map[int64]error{2: errors.New("connection reset")}}

	res, err := New(reg, fs, 1).SendAll(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.Zero(t, res.Removed)

	list, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "transient failures keep their registration")
}

func TestSendAllSkipsBlockedUsers(t *testing.T) {
	ctx := context.Background()
	reg := users.NewMemoryRegistry()
	require.NoError(t, reg.Ensure(ctx, users.User{ID: 1}))
	require.NoError(t, reg.Ensure(ctx, users.User{ID: 2}))
	require.NoError(t, reg.SetBlocked(ctx, 2, true))

	fs := &fakeSender{}
	res, err := New(reg, fs, 4).SendAll(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []int64{1}, fs.sent)
}

func TestPermanentClassification(t *testing.T) {
	assert.True(t, permanent(tele.ErrBlockedByUser))
	assert.True(t, permanent(&tele.Error{Code: 403, Description: "Forbidden: user is deactivated"}))
	assert.False(t, permanent(&tele.Error{Code: 429, Description: "Too Many Requests"}))
	assert.False(t, permanent(errors.New("timeout")))
	assert.False(t, permanent(nil))
}

func TestSendAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reg := users.NewMemoryRegistry()
	for id := int64(1); id <= 100; id++ {
		require.NoError(t, reg.Ensure(ctx, users.User{ID: id}))
	}
	slow := senderFunc(func(ctx context.Context, _ int64, _ string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return nil
		}
	})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := New(reg, slow, 1).SendAll(ctx, "hi")
	assert.ErrorIs(t, err, context.Canceled)
}

type senderFunc func(ctx context.Context, userID int64, text string) error

func (f senderFunc) Send(ctx context.Context, userID int64, text string) error {
	return f(ctx, userID, text)
}
