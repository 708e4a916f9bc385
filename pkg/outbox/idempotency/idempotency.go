package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foresttrail/trailops/pkg/redis"
)

// Guard records which outbox events a worker already handed to the broker, so
// a crash between publish and the database commit does not publish twice.
// Keys follow `trailops:idempotency:evt:<worker>:<event_id>`.
type Guard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewGuard(store redis.IdempotencyStore, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Guard{store: store, ttl: ttl}, nil
}

// Claim returns true when the event was already claimed by the worker and
// otherwise claims it for the configured TTL.
func (g *Guard) Claim(ctx context.Context, worker string, eventID uuid.UUID) (bool, error) {
	key, err := g.key(worker, eventID)
	if err != nil {
		return false, err
	}
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release drops a claim so a failed publish can be retried.
func (g *Guard) Release(ctx context.Context, worker string, eventID uuid.UUID) error {
	key, err := g.key(worker, eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) key(worker string, eventID uuid.UUID) (string, error) {
	if worker == "" {
		return "", errors.New("worker name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey(fmt.Sprintf("evt:%s", worker), eventID.String()), nil
}
