package middleware

import (
	"net/http"
	"time"

	"github.com/killerx1411/access-control-hub/internal/session"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "authz.session"

// CurrentSession returns the session attached by RequireAuth.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

// RequireAuth resolves the session cookie into a session and attaches
// it to the request context. Any failure along the way, including a
// store error, yields 401: an unreadable session is treated as no
// session, never as an authenticated one.
func RequireAuth(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			unauthorized(c)
			return
		}

		sess, err := store.Get(c.Request.Context(), cookie.Value)
		if err != nil || sess == nil {
			unauthorized(c)
			return
		}

		if time.Now().After(sess.ExpiresAt) {
			_ = store.Delete(c.Request.Context(), cookie.Value)
			unauthorized(c)
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "unauthorized",
	})
}
