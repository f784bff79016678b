package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/core/session"
)

const (
	invitationEmailFunction = "send-invitation-email"
	minPasswordLength       = 6
)

// fields checks single values with the same rules the HTTP schemas use.
var fields = validator.New()

// AccountService manages operator accounts and invitations.
type AccountService struct {
	users       ports.UserRepository
	invitations ports.InvitationRepository
	tokens      *TokenService
	functions   ports.FunctionInvoker
	recorder    ports.ActivityRecorder
	session     *session.Session
	now         func() time.Time
	logger      zerolog.Logger
}

func NewAccountService(
	users ports.UserRepository,
	invitations ports.InvitationRepository,
	tokens *TokenService,
	functions ports.FunctionInvoker,
	recorder ports.ActivityRecorder,
	sess *session.Session,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		users:       users,
		invitations: invitations,
		tokens:      tokens,
		functions:   functions,
		recorder:    recorder,
		session:     sess,
		now:         time.Now,
		logger:      logger,
	}
}

func (s *AccountService) requireAdmin() (domain.UserProfile, error) {
	u, err := s.session.Require()
	if err != nil {
		return u, err
	}
	if !u.IsAdmin() {
		return u, domain.ErrForbidden
	}
	return u, nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// DeleteUser removes another operator's profile and auth account.
func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	admin, err := s.requireAdmin()
	if err != nil {
		return err
	}
	if id == admin.ID {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrInvalidInput)
	}
	target, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, s.recorder, s.session, domain.ActionDelete, domain.EntityUser, id, target.Name, map[string]any{"email": target.Email})
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// SendInvitation creates an invitation and asks the backend to email it. A
// failed email does not fail the call.
func (s *AccountService) SendInvitation(ctx context.Context, in ports.SendInvitationInput) (*domain.Invitation, error) {
	admin, err := s.requireAdmin()
	if err != nil {
		return nil, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := fields.Var(in.Email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if in.Role != domain.RoleAdmin && in.Role != domain.RoleStaff {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}

	_, err = s.invitations.FindPendingByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvitationExists, in.Email)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	inv, err := s.invitations.Create(ctx, ports.NewInvitation{
		Email:     in.Email,
		Name:      in.Name,
		Role:      in.Role,
		InvitedBy: admin.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.functions.Invoke(ctx, invitationEmailFunction, map[string]string{
		"email":       inv.Email,
		"name":        inv.Name,
		"inviteToken": inv.InviteToken,
	}); err != nil {
		s.logger.Warn().Err(err).Str("invitation_id", inv.ID).Msg("invitation created but email failed to send")
	}

	record(ctx, s.recorder, s.session, domain.ActionInvite, domain.EntityInvitation, inv.ID, inv.Email, map[string]any{
		"name": inv.Name,
		"role": inv.Role,
	})
	return inv, nil
}

// ValidateInvitation returns the pending invitation for token.
func (s *AccountService) ValidateInvitation(ctx context.Context, token string) (*domain.Invitation, error) {
	if token == "" {
		return nil, domain.ErrInvitationInvalid
	}
	inv, err := s.invitations.FindPendingByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvitationInvalid
	}
	if err != nil {
		return nil, err
	}
	if inv.Expired(s.now()) {
		return nil, domain.ErrInvitationExpired
	}
	return inv, nil
}

// AcceptInvitation creates the auth account and profile for an invitation and
// signs the new operator in.
func (s *AccountService) AcceptInvitation(ctx context.Context, token, password string) (*domain.UserProfile, error) {
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	inv, err := s.ValidateInvitation(ctx, token)
	if err != nil {
		return nil, err
	}

	cred, err := s.tokens.SignUp(ctx, ports.SignUpInput{Email: inv.Email, Password: password, Name: inv.Name})
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	userID, err := tokenSubject(cred.AccessToken)
	if err != nil {
		s.tokens.Clear(ctx)
		return nil, err
	}

	profile, err := s.users.Create(ctx, ports.NewUserProfile{
		ID:    userID,
		Name:  inv.Name,
		Email: inv.Email,
		Role:  inv.Role,
	})
	if err != nil {
		s.tokens.Clear(ctx)
		s.logger.Error().Err(err).Str("user_id", userID).Str("invitation_id", inv.ID).Msg("auth account created but profile insert failed")
		return nil, fmt.Errorf("create profile: %w", err)
	}

	if err := s.invitations.MarkAccepted(ctx, inv.ID, s.now().UTC()); err != nil {
		s.tokens.Clear(ctx)
		s.logger.Error().Err(err).Str("user_id", userID).Str("invitation_id", inv.ID).Msg("profile created but invitation not marked accepted")
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}

	s.session.Set(*profile)
	record(ctx, s.recorder, s.session, domain.ActionAcceptInvitation, domain.EntityInvitation, inv.ID, inv.Email, map[string]any{
		"role": inv.Role,
	})
	s.logger.Info().Str("user_id", userID).Str("role", inv.Role).Msg("invitation accepted")
	return profile, nil
}

func (s *AccountService) RevokeInvitation(ctx context.Context, id string) error {
	if _, err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.invitations.Delete(ctx, id); err != nil {
		return err
	}
	record(ctx, s.recorder, s.session, domain.ActionDelete, domain.EntityInvitation, id, "", nil)
	return nil
}

// ResendInvitation pushes the expiry of a pending invitation InvitationTTL into the future.
func (s *AccountService) ResendInvitation(ctx context.Context, id string) error {
	if _, err := s.requireAdmin(); err != nil {
		return err
	}
	expiresAt := s.now().UTC().Add(domain.InvitationTTL)
	if err := s.invitations.SetExpiry(ctx, id, expiresAt); err != nil {
		return err
	}
	record(ctx, s.recorder, s.session, domain.ActionInvite, domain.EntityInvitation, id, "", map[string]any{
		"resend":     true,
		"expires_at": domain.FormatServerTime(expiresAt),
	})
	return nil
}

func (s *AccountService) PendingInvitations(ctx context.Context) ([]domain.Invitation, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	return s.invitations.ListPending(ctx)
}

var _ ports.AccountService = (*AccountService)(nil)
