package handler

import (
	"net/http"

	"github.com/killerx1411/access-control-hub/internal/session"

	"github.com/gin-gonic/gin"
)

// SignOut is unconditional and idempotent: with or without a live
// session it deletes server state best-effort, clears the cookie, and
// answers 204.
func (h *Handler) SignOut(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		_ = h.sessions.Delete(c.Request.Context(), cookie.Value)
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Status(http.StatusNoContent)
}
