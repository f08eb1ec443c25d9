package course

import (
	"errors"
	"net/http"

	"startosedge/internal/authz"
	"startosedge/internal/logger"
	"startosedge/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterPublic mounts the catalog listing; browsing needs no session.
func (h *Handler) RegisterPublic(r *gin.Engine) {
	r.GET("/api/courses", h.list)
}

// RegisterProtected mounts the per-course endpoints on an
// authenticated group.
func (h *Handler) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/courses/:id", h.get)
	g.POST("/courses/:id/enroll-request", h.enrollRequest)
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Category:     c.Query("category"),
		FeaturedOnly: c.Query("featured") == "true",
	}

	courses, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content store unavailable, retry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// get serves course content to entitled sessions. A valid session
// without entitlement is not a bare denial: the response carries the
// purchase context so the caller can offer the buy/request flow.
func (h *Handler) get(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	courseID := c.Param("id")

	crs, err := h.store.Get(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content store unavailable, retry"})
		return
	}

	if !authz.CanAccessCourse(sess, courseID) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":       "purchase_required",
			"course_id":   crs.ID,
			"title":       crs.Title,
			"price_cents": crs.PriceCents,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"course": crs})
}

// enrollRequest records the intent to buy. The actual payment relay is
// an external collaborator; here the request is acknowledged so the
// front end can hand off to it.
func (h *Handler) enrollRequest(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	courseID := c.Param("id")

	crs, err := h.store.Get(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content store unavailable, retry"})
		return
	}

	if authz.CanAccessCourse(sess, courseID) {
		c.JSON(http.StatusOK, gin.H{"status": "already_enrolled"})
		return
	}

	logger.Info("enroll request", map[string]any{
		"user_id": sess.Identity.UserID,
		"course":  courseID,
	})

	c.JSON(http.StatusAccepted, gin.H{
		"status":      "purchase_required",
		"course_id":   crs.ID,
		"title":       crs.Title,
		"price_cents": crs.PriceCents,
	})
}
