package provider

import (
	"context"

	"github.com/killerx1411/access-control-hub/internal/auth"
)

// OAuthProvider is the contract for external OIDC sign-in providers.
// Implementations return identity facts only and must not create
// profiles, sessions, or roles.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google").
	Name() string

	// AuthCodeURL returns the OAuth authorization URL. State and PKCE
	// parameters are supplied by the caller.
	AuthCodeURL(state string, codeChallenge string) string

	// ExchangeCode exchanges the authorization code for provider
	// credentials and returns a normalized identity.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
	) (*auth.ProviderIdentity, error)
}
