package adapter

import (
	"context"

	"content-paywall/internal/domain/model"
)

// IdentityVerifier is the boundary to the external identity service. It
// resolves bearer credentials into a trusted Identity; password storage and
// email verification live entirely on the other side of this port.
type IdentityVerifier interface {
	// IdentityFromToken verifies a bearer token and returns the identity it
	// was issued to, or domain.ErrUnauthenticated.
	IdentityFromToken(ctx context.Context, token string) (*model.Identity, error)
}
