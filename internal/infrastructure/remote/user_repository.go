package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

const usersTable = "user_profiles"

// UserRepository implements ports.UserRepository on user_profiles and the
// admin user endpoint.
type UserRepository struct {
	store *RestStore
	pipe  Executor
}

func NewUserRepository(store *RestStore, pipe Executor) *UserRepository {
	return &UserRepository{store: store, pipe: pipe}
}

type userRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.UserProfile, error) {
	return fetchOne[domain.UserProfile](ctx, r.store, From(usersTable).Select("*").Eq("id", id))
}

func (r *UserRepository) List(ctx context.Context) ([]domain.UserProfile, error) {
	return fetchAll[domain.UserProfile](ctx, r.store, From(usersTable).Select("*").Order("created_at", false))
}

func (r *UserRepository) Create(ctx context.Context, p ports.NewUserProfile) (*domain.UserProfile, error) {
	return insertOne[domain.UserProfile](ctx, r.store, usersTable, userRow{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
	})
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := updateReturning[domain.UserProfile](ctx, r.store, From(usersTable).Select("id").Eq("id", id), map[string]any{
		"last_login_at": domain.FormatServerTime(at),
	})
	return err
}

// Delete calls the server-side admin endpoint, which removes the profile and
// the auth account with service credentials.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pipe.Execute(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/users/" + url.PathEscape(id),
	})
	return err
}

var _ ports.UserRepository = (*UserRepository)(nil)
