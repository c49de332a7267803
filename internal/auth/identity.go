package auth

import "time"

// Identity is the stable principal record owned by the credential
// layer. The authorization core only reads it; mutation happens through
// the sign-up and sign-in operations.
type Identity struct {
	UserID      string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProviderIdentity is a normalized external OIDC identity. It carries
// facts only; no user, session, or role decisions are made from it
// until the resolver maps it to a profile.
type ProviderIdentity struct {
	Provider       string // e.g. "google"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string
	DisplayName    string
	EmailVerified  bool
}
