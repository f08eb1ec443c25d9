package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"startosedge/internal/authz"
	"startosedge/internal/guard"
	"startosedge/internal/identity"
	"startosedge/internal/session"
	"startosedge/internal/sessionstate"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "resolved_session"

// SetSession stores a resolved session on the request context. Normally
// only ResolveSession calls this; handler tests use it to inject a
// session without standing up the full middleware chain.
func SetSession(c *gin.Context, s sessionstate.Session) {
	c.Set(sessionContextKey, s)
}

// SessionFromContext extracts the resolved session placed there by
// ResolveSession. The zero (unauthenticated) session is returned when
// nothing was resolved.
func SessionFromContext(c *gin.Context) sessionstate.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return sessionstate.Unauthenticated()
	}
	s, ok := v.(sessionstate.Session)
	if !ok {
		return sessionstate.Unauthenticated()
	}
	return s
}

// Auth resolves the caller's session on every request and stores it in
// the gin context. It never rejects by itself: missing or expired
// provider sessions resolve to the unauthenticated session, and the
// gating middlewares below decide what that means for the route.
//
// A store failure during resolution aborts with 503 instead of letting
// a signed-in user fall through as unauthenticated.
type Auth struct {
	Sessions   session.Store
	Identities IdentityReader
	Resolver   *sessionstate.Resolver
}

// IdentityReader re-reads identity facts for a live session.
type IdentityReader interface {
	GetByID(ctx context.Context, userID string) (identity.Identity, error)
}

func NewAuth(sessions session.Store, identities IdentityReader, resolver *sessionstate.Resolver) *Auth {
	return &Auth{Sessions: sessions, Identities: identities, Resolver: resolver}
}

func (a *Auth) ResolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// 1. Read session cookie
		cookie, err := c.Request.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			c.Set(sessionContextKey, sessionstate.Unauthenticated())
			c.Next()
			return
		}
		sessionID := cookie.Value

		// 2. Load provider session
		sess, err := a.Sessions.Get(ctx, sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "session store unavailable, retry",
			})
			return
		}
		if sess == nil || time.Now().After(sess.ExpiresAt) {
			if sess != nil {
				_ = a.Sessions.Delete(ctx, sessionID)
			}
			c.Set(sessionContextKey, sessionstate.Unauthenticated())
			c.Next()
			return
		}

		// 3. Re-read identity facts; verification may have changed
		// since the session was issued.
		id, err := a.Identities.GetByID(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				// Identity deleted out from under the session.
				_ = a.Sessions.Delete(ctx, sessionID)
				c.Set(sessionContextKey, sessionstate.Unauthenticated())
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "identity store unavailable, retry",
			})
			return
		}

		// 4. Resolve to a session snapshot
		resolved, err := a.Resolver.Resolve(ctx, identity.Event{
			Kind:      identity.SignedIn,
			Identity:  id,
			SessionID: sessionID,
		})
		if err != nil {
			// StoreUnavailable: retryable, never a login redirect.
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "profile store unavailable, retry",
			})
			return
		}

		c.Set(sessionContextKey, resolved)
		c.Next()
	}
}

// RequirePage applies the route-guard decision for browser navigation:
// 302 to /login or /profile with the reason in the query string.
func RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := SessionFromContext(c)
		d := guard.Evaluate(s, c.Request.URL.Path)

		switch d.State {
		case guard.StateGranted:
			c.Next()
		case guard.StateRedirect:
			c.Redirect(http.StatusFound, d.Target+"?reason="+d.Reason)
			c.Abort()
		default:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "temporarily unavailable, retry",
			})
		}
	}
}

// RequireAuth rejects unauthenticated API calls with 401 JSON.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := SessionFromContext(c)
		if !s.Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin gates the admin console API surface.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := SessionFromContext(c)
		if !s.Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		if !authz.CanAccessAdminConsole(s) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin privileges required",
			})
			return
		}
		c.Next()
	}
}
