package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/pkg/metrics"
)

const defaultRefreshTimeout = 30 * time.Second

// TokenService owns the credential pair: expiry checks, refresh, sign-in and
// sign-out. Every failure path leaves the store empty.
type TokenService struct {
	store          ports.CredentialStore
	endpoint       ports.TokenEndpoint
	refreshTimeout time.Duration
	now            func() time.Time
	logger         zerolog.Logger
}

func NewTokenService(store ports.CredentialStore, endpoint ports.TokenEndpoint, refreshTimeout time.Duration, logger zerolog.Logger) *TokenService {
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}
	return &TokenService{
		store:          store,
		endpoint:       endpoint,
		refreshTimeout: refreshTimeout,
		now:            time.Now,
		logger:         logger,
	}
}

// current loads the stored credential. Store errors are treated as absence.
func (s *TokenService) current(ctx context.Context) *domain.Credential {
	c, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("credential store load failed")
		return nil
	}
	return c
}

// Credential returns the stored pair, if any.
func (s *TokenService) Credential(ctx context.Context) (*domain.Credential, bool) {
	c := s.current(ctx)
	return c, c != nil
}

func (s *TokenService) IsAccessExpired(ctx context.Context) bool {
	c := s.current(ctx)
	return c == nil || c.AccessExpired(s.now())
}

func (s *TokenService) IsRefreshExpired(ctx context.Context) bool {
	c := s.current(ctx)
	return c == nil || c.RefreshExpired(s.now())
}

// IsAuthenticated reports whether a credential exists that can still be refreshed.
func (s *TokenService) IsAuthenticated(ctx context.Context) bool {
	return !s.IsRefreshExpired(ctx)
}

// AccessToken returns the stored access token without refreshing it, or "".
func (s *TokenService) AccessToken(ctx context.Context) string {
	if c := s.current(ctx); c != nil {
		return c.AccessToken
	}
	return ""
}

// Refresh exchanges the stored refresh token for a new pair. The exchange
// ignores the caller's cancellation and is bounded by refreshTimeout instead.
func (s *TokenService) Refresh(ctx context.Context) (domain.Credential, error) {
	c := s.current(ctx)
	if c == nil || c.RefreshToken == "" || c.RefreshExpired(s.now()) {
		metrics.TokenRefreshTotal.WithLabelValues("expired").Inc()
		s.clear(ctx)
		return domain.Credential{}, domain.ErrRefreshExpired
	}

	detached := context.WithoutCancel(ctx)
	refreshCtx, cancel := context.WithTimeout(detached, s.refreshTimeout)
	defer cancel()

	next, err := s.endpoint.Refresh(refreshCtx, c.RefreshToken)
	if err != nil {
		s.clear(detached)
		if errors.Is(err, domain.ErrNetwork) {
			metrics.TokenRefreshTotal.WithLabelValues("network_error").Inc()
			s.logger.Error().Err(err).Msg("token refresh failed: network")
			return domain.Credential{}, fmt.Errorf("token refresh: %w", err)
		}
		metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn().Err(err).Msg("token refresh rejected")
		return domain.Credential{}, fmt.Errorf("%w: %v", domain.ErrRefreshRejected, err)
	}
	if next.AccessToken == "" {
		s.clear(detached)
		metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
		return domain.Credential{}, fmt.Errorf("%w: empty access token", domain.ErrRefreshRejected)
	}

	if err := s.store.Save(detached, next); err != nil {
		s.clear(detached)
		return domain.Credential{}, fmt.Errorf("save refreshed credential: %w", err)
	}
	metrics.TokenRefreshTotal.WithLabelValues("ok").Inc()
	s.logger.Debug().Time("access_expires_at", next.AccessExpiresAt).Msg("access token refreshed")
	return next, nil
}

// SignIn authenticates with email and password and stores the new pair.
func (s *TokenService) SignIn(ctx context.Context, email, password string) (domain.Credential, error) {
	c, err := s.endpoint.Login(ctx, email, password)
	if err != nil {
		return domain.Credential{}, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return domain.Credential{}, fmt.Errorf("save credential: %w", err)
	}
	return c, nil
}

// SignUp creates an auth account and stores the pair it returns.
func (s *TokenService) SignUp(ctx context.Context, in ports.SignUpInput) (domain.Credential, error) {
	c, err := s.endpoint.SignUp(ctx, in)
	if err != nil {
		return domain.Credential{}, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return domain.Credential{}, fmt.Errorf("save credential: %w", err)
	}
	return c, nil
}

// SignOut invalidates the session remotely on a best-effort basis and always
// clears the store.
func (s *TokenService) SignOut(ctx context.Context) {
	if c := s.current(ctx); c != nil && c.AccessToken != "" {
		if err := s.endpoint.Logout(ctx, c.AccessToken); err != nil {
			s.logger.Warn().Err(err).Msg("remote logout failed")
		}
	}
	s.clear(ctx)
}

// Clear drops the stored pair.
func (s *TokenService) Clear(ctx context.Context) { s.clear(ctx) }

func (s *TokenService) clear(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("credential store clear failed")
	}
}
