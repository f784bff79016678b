package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyTTL = 24 * time.Hour
	pendingMarker  = "pending"
)

// IdempotencyStore maps order Idempotency-Key values to the order they created.
// Key format: idem:order:<key>
type IdempotencyStore struct {
	client *redis.Client
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Claim reserves key with a pending marker. If the key already exists it
// returns the stored order id, or "" while the owner has not completed.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), pendingMarker, idempotencyTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return "", true, nil
	}
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; try once more.
		ok, err = s.client.SetNX(ctx, s.key(key), pendingMarker, idempotencyTTL).Result()
		if err != nil {
			return "", false, fmt.Errorf("idempotency claim: %w", err)
		}
		return "", ok, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if v == pendingMarker {
		return "", false, nil
	}
	return v, false, nil
}

// Complete stores the order id produced for key.
func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	return s.client.Set(ctx, s.key(key), orderID, idempotencyTTL).Err()
}

// Release drops the claim so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *IdempotencyStore) key(k string) string {
	return "idem:order:" + k
}
