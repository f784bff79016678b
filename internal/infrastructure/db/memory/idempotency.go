package memory

import (
	"context"
	"sync"
)

// IdempotencyStore is the in-process counterpart of the Redis store. Entries
// never expire.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: make(map[string]string)}
}

func (s *IdempotencyStore) Claim(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if orderID, ok := s.entries[key]; ok {
		return orderID, false, nil
	}
	s.entries[key] = ""
	return "", true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = orderID
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
