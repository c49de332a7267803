package middleware

import (
	"net/http"

	"github.com/killerx1411/access-control-hub/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Denial is the structured permission-denied signal consumers render
// as a blocking dialog or disabled control.
type Denial struct {
	Error           string `json:"error"`
	AttemptedAction string `json:"attempted_action"`
	RequiredRole    string `json:"required_role"`
	CurrentRole     string `json:"current_role"`
}

// RequireCapability gates a route on the session's capability set. The
// guarded handler is simply never invoked on denial; there is no
// optimistic attempt to roll back. A session whose role snapshot does
// not parse is treated as the default role, so unknown means denied
// for anything above baseline.
func RequireCapability(cap rbac.Capability, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := rbac.DefaultRole
		if sess, ok := CurrentSession(c); ok {
			role, _ = rbac.Parse(sess.Role.String())
		}

		if !rbac.CapabilitiesOf(role).Has(cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, Denial{
				Error:           "permission_denied",
				AttemptedAction: action,
				RequiredRole:    cap.RequiredRole(),
				CurrentRole:     role.String(),
			})
			return
		}

		c.Next()
	}
}
