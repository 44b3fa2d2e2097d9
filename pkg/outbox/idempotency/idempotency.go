// Package idempotency keeps the outbox publisher from handing the same event
// to Pub/Sub twice when a batch is replayed after a failed commit.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/merko/merko-backend/pkg/redis"
)

// DefaultTTL is well past the publisher's retry window; a claim only has to
// survive until the row is marked published.
const DefaultTTL = 7 * 24 * time.Hour

// Guard records which events one worker has published. Keys look like
// merko:idempotency:evt:published:<worker>:<event_id> and hold the instance
// that claimed them.
type Guard struct {
	store    redis.IdempotencyStore
	scope    string
	instance string
	ttl      time.Duration
	now      func() time.Time
}

// NewGuard builds a guard for worker. instance is stored as the claim value
// so an operator can tell which replica published an event. A zero ttl
// uses DefaultTTL.
func NewGuard(store redis.IdempotencyStore, worker, instance string, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if worker == "" {
		return nil, errors.New("worker name is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Guard{
		store:    store,
		scope:    "evt:published:" + worker,
		instance: instance,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Seen claims eventID and reports whether it had already been claimed. A
// false result means the caller now owns the publish and must Forget the
// event if the publish fails.
func (g *Guard) Seen(ctx context.Context, eventID uuid.UUID) (bool, error) {
	key, err := g.key(eventID)
	if err != nil {
		return false, err
	}
	claim := g.instance + "@" + g.now().UTC().Format(time.RFC3339)
	claimed, err := g.store.SetNX(ctx, key, claim, g.ttl)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// Forget drops the claim so the event is published on the next attempt.
func (g *Guard) Forget(ctx context.Context, eventID uuid.UUID) error {
	key, err := g.key(eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) key(eventID uuid.UUID) (string, error) {
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey(g.scope, eventID.String()), nil
}
