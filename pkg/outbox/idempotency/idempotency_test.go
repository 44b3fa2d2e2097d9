package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	setNXResult bool
	setNXError  error
	lastKey     string
	lastValue   any
	lastTTL     time.Duration
	lastDeleted string
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.lastKey = key
	f.lastValue = value
	f.lastTTL = ttl
	return f.setNXResult, f.setNXError
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "merko:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	if len(keys) > 0 {
		f.lastDeleted = keys[0]
	}
	return nil
}

func newGuard(t *testing.T, store *fakeStore, ttl time.Duration) *Guard {
	t.Helper()
	guard, err := NewGuard(store, "outbox-publisher", "worker.2", ttl)
	require.NoError(t, err)
	guard.now = func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) }
	return guard
}

func TestSeenClaimsFirstTime(t *testing.T) {
	store := &fakeStore{setNXResult: true}
	guard := newGuard(t, store, 24*time.Hour)

	eventID := uuid.New()
	seen, err := guard.Seen(context.Background(), eventID)
	require.NoError(t, err)
	assert.False(t, seen)

	assert.Equal(t, "merko:idempotency:evt:published:outbox-publisher:"+eventID.String(), store.lastKey)
	assert.Equal(t, "worker.2@2026-05-04T12:00:00Z", store.lastValue)
	assert.Equal(t, 24*time.Hour, store.lastTTL)
}

func TestSeenReportsExistingClaim(t *testing.T) {
	guard := newGuard(t, &fakeStore{setNXResult: false}, time.Hour)

	seen, err := guard.Seen(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestSeenPropagatesStoreErrors(t *testing.T) {
	guard := newGuard(t, &fakeStore{setNXError: errors.New("connection refused")}, time.Hour)

	_, err := guard.Seen(context.Background(), uuid.New())
	assert.Error(t, err)

	_, err = guard.Seen(context.Background(), uuid.Nil)
	assert.Error(t, err)
}

func TestForgetDeletesClaim(t *testing.T) {
	store := &fakeStore{}
	guard := newGuard(t, store, time.Hour)

	eventID := uuid.New()
	require.NoError(t, guard.Forget(context.Background(), eventID))
	assert.Equal(t, "merko:idempotency:evt:published:outbox-publisher:"+eventID.String(), store.lastDeleted)
}

func TestNewGuardValidation(t *testing.T) {
	_, err := NewGuard(nil, "w", "i", time.Hour)
	assert.Error(t, err)
	_, err = NewGuard(&fakeStore{}, "", "i", time.Hour)
	assert.Error(t, err)
	_, err = NewGuard(&fakeStore{}, "w", "i", -time.Second)
	assert.Error(t, err)

	guard, err := NewGuard(&fakeStore{}, "w", "i", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, guard.ttl)
}
