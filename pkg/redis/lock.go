package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 30 * time.Second

// LockStore is the subset of Client used by Lock.
type LockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
	CompareAndExpire(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// ErrLockLost is returned by Refresh when the TTL ran out and another owner
// may hold the key.
var ErrLockLost = errors.New("lock no longer held")

// Lock is a SETNX mutex shared across processes. Every acquisition writes a
// fresh owner token and hands it to the caller. Release and Refresh only act
// while the key still carries that token, so a holder whose TTL expired
// cannot free or extend a lock someone else now owns. A Lock keeps no
// per-holder state and may be shared by concurrent callers.
type Lock struct {
	client LockStore
	key    string
	ttl    time.Duration
}

func NewLock(client LockStore, key string, ttl time.Duration) (*Lock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{client: client, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL. It does not block.
// On success it returns the owner token Refresh and Release expect.
func (l *Lock) Acquire(ctx context.Context) (string, bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return "", false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return "", false, nil
	}
	return owner, true, nil
}

// Refresh pushes the expiry out by another TTL while owner holds the lock.
func (l *Lock) Refresh(ctx context.Context, owner string) error {
	if owner == "" {
		return ErrLockLost
	}
	ok, err := l.client.CompareAndExpire(ctx, l.key, owner, l.ttl)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", l.key, err)
	}
	if !ok {
		return ErrLockLost
	}
	return nil
}

// Release frees the lock if owner still holds it. An empty or expired owner
// is a no-op.
func (l *Lock) Release(ctx context.Context, owner string) error {
	if owner == "" {
		return nil
	}
	if _, err := l.client.CompareAndDelete(ctx, l.key, owner); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
