package handler

import (
	"net/http"
	"time"

	"github.com/killerx1411/access-control-hub/internal/auth"
	"github.com/killerx1411/access-control-hub/internal/auth/credentials"
	"github.com/killerx1411/access-control-hub/internal/auth/provider"
	"github.com/killerx1411/access-control-hub/internal/auth/resolver"
	"github.com/killerx1411/access-control-hub/internal/logger"
	"github.com/killerx1411/access-control-hub/internal/rbac"
	"github.com/killerx1411/access-control-hub/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionTTL = 24 * time.Hour

// Handler owns the authentication endpoints: password sign-up/sign-in,
// sign-out, session restore, and the OIDC flow.
type Handler struct {
	credentials      *credentials.Service
	providers        *provider.Registry
	identityResolver resolver.Resolver
	sessions         session.Store
	roles            rbac.Resolver
	signedOutURL     string
}

func NewHandler(
	credentialService *credentials.Service,
	registry *provider.Registry,
	identityResolver resolver.Resolver,
	sessionStore session.Store,
	roleResolver rbac.Resolver,
	signedOutURL string,
) *Handler {
	if signedOutURL == "" {
		signedOutURL = "/auth"
	}
	return &Handler{
		credentials:      credentialService,
		providers:        registry,
		identityResolver: identityResolver,
		sessions:         sessionStore,
		roles:            roleResolver,
		signedOutURL:     signedOutURL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/signup", h.SignUp)
	r.POST("/auth/signin", h.SignIn)
	r.POST("/auth/signout", h.SignOut)
	r.GET("/auth/session", h.Session)

	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)
}

// establishSession resolves the role for an authenticated identity and
// persists a new session with that role snapshotted in. Identity is
// resolved first, always; the role lookup is keyed by it. A role fetch
// failure leaves the user authenticated at the default role, never at
// an elevated one.
func (h *Handler) establishSession(
	c *gin.Context,
	identity *auth.Identity,
) (*session.Session, error) {

	role, err := h.roles.ResolveRole(c.Request.Context(), identity.UserID)
	if err != nil {
		logger.Warn("role resolution failed, defaulting", map[string]any{
			"user_id": identity.UserID,
			"error":   err.Error(),
		})
		role = rbac.DefaultRole
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := session.Session{
		SessionID:   sessionID,
		UserID:      identity.UserID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Role:        role,
		CreatedAt:   now,
		ExpiresAt:   now.Add(sessionTTL),
	}

	if err := h.sessions.Create(c.Request.Context(), sess); err != nil {
		return nil, err
	}

	session.SetCookie(c.Writer, sessionID, sess.ExpiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return &sess, nil
}

// sessionPayload is the authenticated-state response shared by sign-in
// and restore. Capabilities ride along so the UI never derives them.
func sessionPayload(identity auth.Identity, role rbac.Role) gin.H {
	return gin.H{
		"user":         identity,
		"role":         role,
		"capabilities": rbac.CapabilitiesOf(role),
	}
}
