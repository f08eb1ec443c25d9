package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionReader is the slice of the middleware the handler needs to
// find out who is calling. Declared here to avoid an import cycle with
// the middleware package.
type SessionReader func(c *gin.Context) (userID string, ok bool)

type Handler struct {
	store   Store
	session SessionReader
}

func NewHandler(store Store, session SessionReader) *Handler {
	return &Handler{store: store, session: session}
}

// RegisterRoutes mounts the self-service profile API on an
// authenticated group. The profile page itself stays reachable for
// incomplete profiles; only the authentication gate applies here.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/profile", h.get)
	g.PUT("/profile", h.update)
}

func (h *Handler) get(c *gin.Context) {
	userID, ok := h.session(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.store.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lazily-created records: no profile yet is a valid state.
			c.JSON(http.StatusOK, gin.H{
				"profile":            nil,
				"complete":           false,
				"completion_percent": 0,
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile store unavailable, retry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":            p,
		"complete":           Complete(p),
		"completion_percent": CompletionPercent(p),
	})
}

type updateRequest struct {
	Name           *string   `json:"name"`
	Email          *string   `json:"email"`
	Phone          *string   `json:"phone"`
	College        *string   `json:"college"`
	Degree         *string   `json:"degree"`
	GraduationYear *string   `json:"graduation_year"`
	Bio            *string   `json:"bio"`
	Skills         *[]string `json:"skills"`
	Github         *string   `json:"github"`
	Linkedin       *string   `json:"linkedin"`
	Portfolio      *string   `json:"portfolio"`
}

// update writes the caller's own profile. The request shape has no
// role or enrollment fields at all: privileged fields cannot be
// smuggled through a self-service write.
func (h *Handler) update(c *gin.Context) {
	userID, ok := h.session(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	patch := Patch{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		College:        req.College,
		Degree:         req.Degree,
		GraduationYear: req.GraduationYear,
		Bio:            req.Bio,
		Skills:         req.Skills,
		Github:         req.Github,
		Linkedin:       req.Linkedin,
		Portfolio:      req.Portfolio,
	}

	if err := h.store.Set(c.Request.Context(), userID, patch); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile store unavailable, retry"})
		return
	}

	p, err := h.store.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile store unavailable, retry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":            p,
		"complete":           Complete(p),
		"completion_percent": CompletionPercent(p),
	})
}
