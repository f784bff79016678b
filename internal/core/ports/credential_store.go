package ports

import (
	"context"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// CredentialStore is a durable slot for the current credential pair. It does
// no validation.
type CredentialStore interface {
	Save(ctx context.Context, c domain.Credential) error
	// Load returns nil, nil when nothing (or nothing parsable) is stored.
	Load(ctx context.Context) (*domain.Credential, error)
	Clear(ctx context.Context) error
}
