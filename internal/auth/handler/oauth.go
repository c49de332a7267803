package handler

import (
	"net/http"

	"github.com/killerx1411/access-control-hub/internal/auth"
	"github.com/killerx1411/access-control-hub/internal/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, codeChallenge))
}

func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid state"})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})

		// A failed or abandoned provider flow is not authentication;
		// send the user back to start a fresh one.
		c.Redirect(http.StatusFound, h.signedOutURL)
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing pkce verifier"})
		return
	}

	providerIdentity, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		codeVerifier,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	userID, err := h.identityResolver.Resolve(c.Request.Context(), providerIdentity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}

	identity := &auth.Identity{
		UserID:      userID,
		Email:       providerIdentity.Email,
		DisplayName: providerIdentity.DisplayName,
	}

	sess, err := h.establishSession(c, identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist session"})
		return
	}

	logger.Info("oauth sign-in", map[string]any{
		"provider": providerName,
		"user_id":  userID,
		"role":     sess.Role.String(),
	})

	c.JSON(http.StatusOK, sessionPayload(*identity, sess.Role))
}
