// Package session holds the identity of the operator the process is acting
// for. A single Session is created at startup and handed to every component
// that needs to know who is signed in.
package session

import (
	"sync"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// Session is safe for concurrent use.
type Session struct {
	mu   sync.RWMutex
	user *domain.UserProfile
}

func New() *Session {
	return &Session{}
}

// Set replaces the current operator.
func (s *Session) Set(u domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// Current returns the signed-in operator, if any.
func (s *Session) Current() (domain.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.UserProfile{}, false
	}
	return *s.user, true
}

// Require is Current with a typed error for the signed-out case.
func (s *Session) Require() (domain.UserProfile, error) {
	u, ok := s.Current()
	if !ok {
		return domain.UserProfile{}, domain.ErrNotAuthenticated
	}
	return u, nil
}

// ActorID returns the current operator id, or "" when signed out.
func (s *Session) ActorID() string {
	u, _ := s.Current()
	return u.ID
}

// Clear forgets the current operator.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}
