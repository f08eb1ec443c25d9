package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"startosedge/internal/identity"
	"startosedge/internal/identity/credentials"
	"startosedge/internal/identity/provider"
	"startosedge/internal/logger"
	"startosedge/internal/mailer"
	"startosedge/internal/profile"
	"startosedge/internal/session"
	"startosedge/internal/sessionstate"

	"github.com/gin-gonic/gin"
)

const sessionTTL = 24 * time.Hour

type Handler struct {
	providers    *provider.Registry
	sessionStore session.Store
	resolver     identity.Resolver
	credentials  *credentials.Service
	identities   *identity.Store
	verification *identity.VerificationStore
	sessions     *sessionstate.Resolver
	profiles     profile.Store
	feed         *identity.Feed
	mail         mailer.Mailer
	baseURL      string
}

func NewHandler(
	registry *provider.Registry,
	sessionStore session.Store,
	resolver identity.Resolver,
	credentialService *credentials.Service,
	identities *identity.Store,
	verification *identity.VerificationStore,
	sessionResolver *sessionstate.Resolver,
	profiles profile.Store,
	feed *identity.Feed,
	mail mailer.Mailer,
	baseURL string,
) *Handler {
	return &Handler{
		providers:    registry,
		sessionStore: sessionStore,
		resolver:     resolver,
		credentials:  credentialService,
		identities:   identities,
		verification: verification,
		sessions:     sessionResolver,
		profiles:     profiles,
		feed:         feed,
		mail:         mail,
		baseURL:      baseURL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/verify", h.Verify)
}

// ensureProfile creates the default profile record for a user that has
// none yet: the row comes into existence on sign-up or on the first
// provider login, with the role column defaulting to the least
// privilege. An existing record is left untouched. A store failure is
// logged and the creation retried on the next sign-in; the auth flow
// itself never fails on it.
func (h *Handler) ensureProfile(ctx context.Context, id identity.Identity) {
	_, err := h.profiles.Get(ctx, id.UserID)
	if err == nil {
		return
	}
	if !errors.Is(err, profile.ErrNotFound) {
		logger.Warn("profile store unavailable, default profile deferred", map[string]any{
			"user_id": id.UserID,
			"error":   err.Error(),
		})
		return
	}

	if err := h.profiles.Set(ctx, id.UserID, profile.Patch{Email: &id.Email}); err != nil {
		logger.Warn("failed to create default profile", map[string]any{
			"user_id": id.UserID,
			"error":   err.Error(),
		})
		return
	}
	logger.Info("default profile created", map[string]any{"user_id": id.UserID})
}

// establishSession persists a provider session for the identity, then
// resolves it immediately. An unverified identity resolves to
// unauthenticated and the resolver tears the session down again, so an
// unverified sign-in never leaves a live session behind.
func (h *Handler) establishSession(
	c *gin.Context,
	id identity.Identity,
) (sessionstate.Session, bool) {

	sessionID, err := session.GenerateID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return sessionstate.Session{}, false
	}

	now := time.Now()
	expiresAt := now.Add(sessionTTL)

	err = h.sessionStore.Create(c.Request.Context(), session.Session{
		SessionID: sessionID,
		UserID:    id.UserID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist session"})
		return sessionstate.Session{}, false
	}

	ev := h.feed.Publish(identity.SignedIn, id, sessionID)

	resolved, err := h.sessions.Resolve(c.Request.Context(), ev)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile store unavailable, retry"})
		return sessionstate.Session{}, false
	}

	if !resolved.Authenticated {
		// Implicit immediate sign-out for unverified identities: the
		// resolver already deleted the stored session.
		session.ClearCookie(c.Writer, session.CookieOptions{
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
		c.JSON(http.StatusForbidden, gin.H{
			"error": "email not verified",
		})
		return sessionstate.Session{}, false
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("login success", map[string]any{
		"user_id": id.UserID,
		"ip":      c.ClientIP(),
	})

	return resolved, true
}

func (h *Handler) Logout(c *gin.Context) {

	// 1. Read session cookie (same pattern as auth middleware)
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// 2. Delete session from store (best-effort)
		_ = h.sessionStore.Delete(c.Request.Context(), cookie.Value)
	}

	// 3. Clear cookie (must pass options)
	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.feed.Publish(identity.SignedOut, identity.Identity{}, "")

	// 4. Idempotent response
	c.Status(http.StatusNoContent)
}
