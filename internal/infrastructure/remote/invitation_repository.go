package remote

import (
	"context"
	"time"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

const invitationsTable = "user_invitations"

// InvitationRepository implements ports.InvitationRepository on user_invitations.
type InvitationRepository struct {
	store *RestStore
}

func NewInvitationRepository(store *RestStore) *InvitationRepository {
	return &InvitationRepository{store: store}
}

type invitationRow struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	InvitedBy string `json:"invited_by"`
}

func (r *InvitationRepository) FindPendingByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	return fetchOne[domain.Invitation](ctx, r.store, From(invitationsTable).Select("*").Eq("email", email).IsNull("accepted_at"))
}

func (r *InvitationRepository) FindPendingByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	return fetchOne[domain.Invitation](ctx, r.store, From(invitationsTable).Select("*").Eq("invite_token", token).IsNull("accepted_at"))
}

func (r *InvitationRepository) ListPending(ctx context.Context) ([]domain.Invitation, error) {
	q := From(invitationsTable).
		Select("*,inviter:invited_by(id,name)").
		IsNull("accepted_at").
		Order("created_at", false)
	return fetchAll[domain.Invitation](ctx, r.store, q)
}

func (r *InvitationRepository) Create(ctx context.Context, inv ports.NewInvitation) (*domain.Invitation, error) {
	return insertOne[domain.Invitation](ctx, r.store, invitationsTable, invitationRow{
		Email:     inv.Email,
		Name:      inv.Name,
		Role:      inv.Role,
		InvitedBy: inv.InvitedBy,
	})
}

func (r *InvitationRepository) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	return r.patch(ctx, id, map[string]any{"accepted_at": domain.FormatServerTime(at)})
}

func (r *InvitationRepository) SetExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	return r.patch(ctx, id, map[string]any{"expires_at": domain.FormatServerTime(expiresAt)})
}

func (r *InvitationRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, From(invitationsTable).Eq("id", id))
}

func (r *InvitationRepository) patch(ctx context.Context, id string, fields map[string]any) error {
	_, err := updateReturning[domain.Invitation](ctx, r.store, From(invitationsTable).Select("id").Eq("id", id), fields)
	return err
}

var _ ports.InvitationRepository = (*InvitationRepository)(nil)
