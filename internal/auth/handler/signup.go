package handler

import (
	"errors"
	"net/http"

	"github.com/killerx1411/access-control-hub/internal/auth"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// SignUp registers a new account. Registration is not authentication:
// no session or cookie is issued; the client signs in afterwards. The
// new account has no role row and resolves to the default role.
func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	identity, err := h.credentials.Register(
		c.Request.Context(),
		req.Email,
		req.Password,
		req.DisplayName,
	)

	if err != nil {
		if verr, ok := auth.AsValidationError(err); ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "validation_failed",
				"fields": verr.Fields,
			})
			return
		}
		if errors.Is(err, auth.ErrAlreadyRegistered) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "already_registered",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id": identity.UserID,
	})
}
