package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/core/session"
)

// AuthService ties the credential pair to an operator profile: it signs in,
// restores the profile after a restart, and signs out.
type AuthService struct {
	tokens   *TokenService
	users    ports.UserRepository
	session  *session.Session
	recorder ports.ActivityRecorder
	// logoutSink writes the logout record synchronously, while the
	// credential it is written with still exists.
	logoutSink ports.ActivitySink
	logger     zerolog.Logger
}

const logoutRecordTimeout = 10 * time.Second

// NewAuthService wires sign-in and sign-out. logoutSink may be nil, in which
// case the logout record goes through recorder like every other record.
func NewAuthService(tokens *TokenService, users ports.UserRepository, sess *session.Session, recorder ports.ActivityRecorder, logoutSink ports.ActivitySink, logger zerolog.Logger) *AuthService {
	return &AuthService{tokens: tokens, users: users, session: sess, recorder: recorder, logoutSink: logoutSink, logger: logger}
}

// Login authenticates, stores the credential and loads the operator profile
// into the session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	cred, err := s.tokens.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Info().Err(err).Str("email", email).Msg("login failed")
		return nil, err
	}

	profile, err := s.loadProfile(ctx, cred)
	if err != nil {
		s.tokens.Clear(ctx)
		return nil, err
	}
	if err := s.users.TouchLastLogin(ctx, profile.ID, time.Now().UTC()); err != nil {
		s.logger.Warn().Err(err).Str("user_id", profile.ID).Msg("last login update failed")
	}

	s.session.Set(*profile)
	record(ctx, s.recorder, s.session, domain.ActionLogin, domain.EntityAuth, profile.ID, profile.Name, map[string]any{"email": profile.Email})
	s.logger.Info().Str("user_id", profile.ID).Str("role", profile.Role).Msg("operator signed in")
	return profile, nil
}

// RestoreSession rebuilds the session from a stored credential. A credential
// whose profile cannot be loaded is discarded.
func (s *AuthService) RestoreSession(ctx context.Context) (*domain.UserProfile, error) {
	cred, ok := s.tokens.Credential(ctx)
	if !ok || !s.tokens.IsAuthenticated(ctx) {
		return nil, domain.ErrNotAuthenticated
	}

	profile, err := s.loadProfile(ctx, *cred)
	if err != nil {
		s.logger.Warn().Err(err).Msg("session restore failed, clearing credential")
		s.tokens.Clear(ctx)
		s.session.Clear()
		return nil, err
	}
	s.session.Set(*profile)
	return profile, nil
}

// Logout records the event, invalidates the remote session and forgets the
// local one. It never fails.
func (s *AuthService) Logout(ctx context.Context) {
	if u, ok := s.session.Current(); ok {
		s.recordLogout(ctx, u)
	}
	s.tokens.SignOut(ctx)
	s.session.Clear()
}

// recordLogout must finish before SignOut: once the credential is gone the
// backend rejects the write.
func (s *AuthService) recordLogout(ctx context.Context, u domain.UserProfile) {
	if s.logoutSink == nil {
		record(ctx, s.recorder, s.session, domain.ActionLogout, domain.EntityAuth, u.ID, u.Name, nil)
		return
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutRecordTimeout)
	defer cancel()
	err := s.logoutSink.Insert(writeCtx, domain.ActivityRecord{
		Action:     domain.ActionLogout,
		EntityType: domain.EntityAuth,
		EntityID:   u.ID,
		EntityName: u.Name,
		ActorID:    u.ID,
		CreatedAt:  domain.NewTimestamp(time.Now()),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", u.ID).Msg("logout record not written")
	}
}

func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	return s.tokens.IsAuthenticated(ctx)
}

// Current returns the signed-in operator.
func (s *AuthService) Current() (domain.UserProfile, bool) {
	return s.session.Current()
}

func (s *AuthService) loadProfile(ctx context.Context, cred domain.Credential) (*domain.UserProfile, error) {
	sub, err := tokenSubject(cred.AccessToken)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.Get(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", sub, err)
	}
	return profile, nil
}

// tokenSubject reads the sub claim without verifying the signature. The
// backend verifies the token on every call; this only picks the profile row.
func tokenSubject(accessToken string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return "", fmt.Errorf("%w: malformed access token", domain.ErrUnauthorized)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: access token has no subject", domain.ErrUnauthorized)
	}
	return sub, nil
}

var _ ports.AuthService = (*AuthService)(nil)
