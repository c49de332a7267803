package handler

import (
	"net/http"
	"time"

	"github.com/killerx1411/access-control-hub/internal/auth"
	"github.com/killerx1411/access-control-hub/internal/session"

	"github.com/gin-gonic/gin"
)

// Session restores an existing session from the cookie. Every failure
// mode, including a store error, answers 401: restore degrades to
// unauthenticated, it never silently grants access.
func (h *Handler) Session(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), cookie.Value)
	if err != nil || sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	if time.Now().After(sess.ExpiresAt) {
		_ = h.sessions.Delete(c.Request.Context(), cookie.Value)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	identity := auth.Identity{
		UserID:      sess.UserID,
		Email:       sess.Email,
		DisplayName: sess.DisplayName,
		CreatedAt:   sess.CreatedAt,
	}

	c.JSON(http.StatusOK, sessionPayload(identity, sess.Role))
}
