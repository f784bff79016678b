// Package memory holds process-local adapters used when Redis is not configured.
package memory

import (
	"context"
	"sync"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

// CredentialStore keeps the credential pair in memory. It is lost on restart.
type CredentialStore struct {
	mu   sync.RWMutex
	cred *domain.Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) Save(_ context.Context, c domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &c
	return nil
}

// Load returns a copy so callers cannot mutate the stored pair.
func (s *CredentialStore) Load(_ context.Context) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

func (s *CredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}

var _ ports.CredentialStore = (*CredentialStore)(nil)
