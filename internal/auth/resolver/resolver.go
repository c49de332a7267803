package resolver

import (
	"context"

	"github.com/killerx1411/access-control-hub/internal/auth"
)

// Resolver determines which profile an external OIDC identity belongs
// to. This is the only place where identity-to-profile mapping lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		identity *auth.ProviderIdentity,
	) (userID string, err error)
}
