package projects

import (
	"errors"
	"net/http"

	"github.com/killerx1411/access-control-hub/internal/middleware"
	"github.com/killerx1411/access-control-hub/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Handler exposes the capability-gated project surface. Every mutating
// route is wrapped in the matching capability gate; the store is never
// called on denial.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	projects := r.Group("/projects")

	// Read access rides on the session itself, not on role.
	projects.GET("", h.list)

	projects.POST("",
		middleware.RequireCapability(rbac.CapabilityEdit, "create a project"),
		h.create,
	)
	projects.PUT("/:id",
		middleware.RequireCapability(rbac.CapabilityEdit, "edit this project"),
		h.update,
	)
	projects.DELETE("/:id",
		middleware.RequireCapability(rbac.CapabilityDelete, "delete this project"),
		h.delete,
	)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": list})
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

func (h *Handler) create(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	created, err := h.store.Create(c.Request.Context(), Project{
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
		OwnerID:     sess.UserID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) update(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.store.Update(
		c.Request.Context(),
		c.Param("id"),
		req.Name,
		req.Description,
		req.Code,
	)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	c.Status(http.StatusNoContent)
}
