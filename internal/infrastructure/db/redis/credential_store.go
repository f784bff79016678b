package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

// CredentialStore keeps the credential pair as a JSON blob under a single key.
// The key expires together with the refresh token.
type CredentialStore struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
}

func NewCredentialStore(client *redis.Client, key string, logger zerolog.Logger) *CredentialStore {
	return &CredentialStore{client: client, key: key, logger: logger}
}

func (s *CredentialStore) Save(ctx context.Context, c domain.Credential) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	// 0 keeps the key without expiry; an expired refresh token is rejected on read anyway.
	ttl := time.Until(c.RefreshExpiresAt)
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("credential save: %w", err)
	}
	return nil
}

func (s *CredentialStore) Load(ctx context.Context) (*domain.Credential, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credential load: %w", err)
	}
	var c domain.Credential
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("discarding unreadable credential blob")
		return nil, nil
	}
	return &c, nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("credential clear: %w", err)
	}
	return nil
}

var _ ports.CredentialStore = (*CredentialStore)(nil)
