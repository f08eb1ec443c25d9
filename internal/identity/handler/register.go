package handler

import (
	"errors"
	"net/http"

	"startosedge/internal/identity/credentials"
	"startosedge/internal/logger"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates credentials and dispatches a verification email.
// No session is issued: the account stays unauthenticated until the
// email is verified, so there is never a half-signed-in state to clean
// up later.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id, err := h.credentials.Register(
		c.Request.Context(),
		req.Email,
		req.Password,
	)
	if err != nil {
		switch {
		case errors.Is(err, credentials.ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	h.ensureProfile(c.Request.Context(), id)
	h.sendVerification(c, id.UserID, id.Email)

	c.JSON(http.StatusCreated, gin.H{
		"status": "registered",
		"next":   "verify_email",
	})
}

// sendVerification issues a token and mails the link. Failures are
// logged only; the registration itself already succeeded.
func (h *Handler) sendVerification(c *gin.Context, userID, email string) {
	token, err := h.verification.Issue(c.Request.Context(), userID)
	if err != nil {
		logger.Error("failed to issue verification token", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	link := h.baseURL + "/auth/verify?token=" + token
	if err := h.mail.SendVerification(c.Request.Context(), email, link); err != nil {
		logger.Error("failed to send verification email", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

// Verify consumes an emailed token and flips the verification flag.
func (h *Handler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	userID, err := h.verification.Consume(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	if err := h.identities.MarkEmailVerified(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify email"})
		return
	}

	c.Redirect(http.StatusFound, "/login?verified=1")
}
