package admin

import (
	"errors"
	"net/http"

	"startosedge/internal/middleware"
	"startosedge/internal/profile"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the console API on an already-gated group.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/users", h.listUsers)
	g.POST("/grants", h.grantCourseAccess)
	g.PUT("/users/:id/role", h.setRole)
	g.DELETE("/users/:id", h.deleteUser)
}

func (h *Handler) listUsers(c *gin.Context) {
	actor := middleware.SessionFromContext(c)

	q := ListQuery{
		Search: c.Query("search"),
	}
	if role := c.Query("role"); role != "" && role != "all" {
		q.Role = profile.ParseRole(role)
	}

	users, stats, err := h.service.ListUsers(c.Request.Context(), actor.Identity.UserID, q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": toUserViews(users),
		"stats": stats,
	})
}

type grantRequest struct {
	Email    string `json:"email" binding:"required"`
	CourseID string `json:"course_id" binding:"required"`
}

func (h *Handler) grantCourseAccess(c *gin.Context) {
	actor := middleware.SessionFromContext(c)

	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.service.GrantCourseAccess(
		c.Request.Context(),
		actor.Identity.UserID,
		req.Email,
		req.CourseID,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "granted"})
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) setRole(c *gin.Context) {
	actor := middleware.SessionFromContext(c)

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role := profile.Role(req.Role)
	if !profile.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	err := h.service.SetRole(
		c.Request.Context(),
		actor.Identity.UserID,
		c.Param("id"),
		role,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "role_updated"})
}

func (h *Handler) deleteUser(c *gin.Context) {
	actor := middleware.SessionFromContext(c)

	err := h.service.DeleteUser(
		c.Request.Context(),
		actor.Identity.UserID,
		c.Param("id"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrIdentityOrphaned):
		// Partial delete: tell the operator to retry rather than
		// pretending it succeeded.
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "profile removed but identity delete failed, retry",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// userView is the console's row shape: profile fields plus the derived
// completion percentage, no internals.
type userView struct {
	UserID            string   `json:"user_id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	College           string   `json:"college"`
	Role              string   `json:"role"`
	Enrolled          []string `json:"enrolled_programs"`
	CompletionPercent int      `json:"completion_percent"`
}

func toUserViews(list []*profile.Profile) []userView {
	out := make([]userView, 0, len(list))
	for _, p := range list {
		out = append(out, userView{
			UserID:            p.UserID,
			Name:              p.Name,
			Email:             p.Email,
			College:           p.College,
			Role:              string(p.Role),
			Enrolled:          p.Enrolled,
			CompletionPercent: profile.CompletionPercent(p),
		})
	}
	return out
}
