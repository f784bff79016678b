package ports

import (
	"context"
	"time"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// NewUserProfile is the insert payload for a profile row.
type NewUserProfile struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// UserRepository defines persistence operations for user profiles.
type UserRepository interface {
	Get(ctx context.Context, id string) (*domain.UserProfile, error)
	List(ctx context.Context) ([]domain.UserProfile, error)
	Create(ctx context.Context, p NewUserProfile) (*domain.UserProfile, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// Delete removes both the profile and the auth account. The server
	// endpoint behind it requires an admin bearer.
	Delete(ctx context.Context, id string) error
}

// NewInvitation is the insert payload for an invitation. The backend assigns
// the token and the default expiry.
type NewInvitation struct {
	Email     string
	Name      string
	Role      string
	InvitedBy string
}

// InvitationRepository defines persistence operations for invitations.
type InvitationRepository interface {
	// FindPendingByEmail returns domain.ErrNotFound when there is no
	// unaccepted invitation for email.
	FindPendingByEmail(ctx context.Context, email string) (*domain.Invitation, error)
	// FindPendingByToken returns domain.ErrNotFound for unknown or accepted tokens.
	FindPendingByToken(ctx context.Context, token string) (*domain.Invitation, error)
	ListPending(ctx context.Context) ([]domain.Invitation, error)
	Create(ctx context.Context, inv NewInvitation) (*domain.Invitation, error)
	MarkAccepted(ctx context.Context, id string, at time.Time) error
	SetExpiry(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}
