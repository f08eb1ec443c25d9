package handler

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"time"

	"startosedge/internal/utils"

	"github.com/gin-gonic/gin"
)

// Short-lived cookies that carry OAuth flow material (CSRF state and
// the PKCE verifier) across the redirect round trip. Both are consumed
// exactly once on callback.
const (
	stateCookieName = "__oauth_state"
	pkceCookieName  = "__oauth_pkce"
	flowCookieTTL   = 5 * time.Minute
)

func setFlowCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func consumeFlowCookie(c *gin.Context, name string) string {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return ""
	}
	setFlowCookie(c, name, "", -1)
	return cookie.Value
}

func generateState(c *gin.Context) string {
	state := utils.RandomToken(32)
	setFlowCookie(c, stateCookieName, state, int(flowCookieTTL.Seconds()))
	return state
}

// validateState compares the provider-echoed state against the cookie
// and invalidates the cookie either way, so a replayed callback fails.
func validateState(c *gin.Context) bool {
	echoed := c.Query("state")
	stored := consumeFlowCookie(c, stateCookieName)
	return echoed != "" && echoed == stored
}

func generatePKCE(c *gin.Context) (verifier, challenge string) {
	verifier = utils.RandomToken(32)
	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])
	setFlowCookie(c, pkceCookieName, verifier, int(flowCookieTTL.Seconds()))
	return verifier, challenge
}

func getPKCEVerifier(c *gin.Context) string {
	return consumeFlowCookie(c, pkceCookieName)
}
