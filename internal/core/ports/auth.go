package ports

import (
	"context"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// SignUpInput carries the fields needed to create an auth account.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

// TokenEndpoint is the remote auth API. Implementations must not route these
// calls through the request pipeline: Refresh authenticates with the refresh
// token and must never trigger another refresh.
type TokenEndpoint interface {
	Login(ctx context.Context, email, password string) (domain.Credential, error)
	SignUp(ctx context.Context, in SignUpInput) (domain.Credential, error)
	Refresh(ctx context.Context, refreshToken string) (domain.Credential, error)
	Logout(ctx context.Context, accessToken string) error
}

// AuthService is the session-facing surface of the token lifecycle.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.UserProfile, error)
	RestoreSession(ctx context.Context) (*domain.UserProfile, error)
	Logout(ctx context.Context)
	IsAuthenticated(ctx context.Context) bool
	Current() (domain.UserProfile, bool)
}
