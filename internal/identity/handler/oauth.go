package handler

import (
	"net/http"

	"startosedge/internal/logger"

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

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
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
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	errParam := c.Query("error")
	errDesc := c.Query("error_description")

	// CASE 1: OAuth error (very common during registration)
	if errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     errDesc,
		})
		c.Redirect(http.StatusFound, "/login")
		return
	}

	// CASE 2: Normal OAuth callback
	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	pid, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		codeVerifier,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	id, err := h.resolver.Resolve(c.Request.Context(), pid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	h.ensureProfile(c.Request.Context(), id)

	// Same verification gate as password logins: a provider identity
	// with an unverified email gets no session.
	if _, ok := h.establishSession(c, id); !ok {
		return
	}

	c.Redirect(http.StatusFound, "/dashboard")
}
