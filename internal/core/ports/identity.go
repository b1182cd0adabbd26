package ports

import (
	"context"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

type IdentityResolver interface {
	// Authenticate turns an opaque caller token into an identity.
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
	// Lookup returns the current role, venue and active flag for uid.
	Lookup(ctx context.Context, uid string) (*domain.Identity, error)
}
