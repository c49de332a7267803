package admin

import (
	"errors"
	"net/http"

	"github.com/killerx1411/access-control-hub/internal/middleware"
	"github.com/killerx1411/access-control-hub/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the admin endpoints on an authenticated group.
// Both routes require the manage-users capability up front.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/admin/users")
	users.Use(middleware.RequireCapability(rbac.CapabilityManageUsers, "manage user roles"))

	users.GET("", h.listUsers)
	users.PUT("/:id/role", h.setRole)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.service.ListUsersWithRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) setRole(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role, ok := rbac.Parse(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	// user_roles.user_id is uuid-typed; reject garbage ids here instead
	// of letting the cast error surface as a 500.
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	err = h.service.SetRole(c.Request.Context(), sess.UserID, targetID.String(), role)
	if err != nil {
		if errors.Is(err, rbac.ErrPermissionDenied) {
			// The store-side check disagreed with the session snapshot,
			// e.g. the actor was demoted after signing in.
			c.JSON(http.StatusForbidden, gin.H{"error": "permission_denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"role": role})
}
