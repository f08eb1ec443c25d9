package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"startosedge/internal/identity"
	"startosedge/internal/profile"
	"startosedge/internal/session"
	"startosedge/internal/sessionstate"

	"github.com/gin-gonic/gin"
)

type fakeSessions struct {
	sessions map[string]*session.Session
	getErr   error
}

func (f *fakeSessions) Create(ctx context.Context, s session.Session) error { return nil }
func (f *fakeSessions) Get(ctx context.Context, id string) (*session.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.sessions[id], nil
}
func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}
func (f *fakeSessions) DeleteAllForUser(ctx context.Context, userID string) error { return nil }

type fakeIdentities struct {
	byID map[string]identity.Identity
}

func (f *fakeIdentities) GetByID(ctx context.Context, userID string) (identity.Identity, error) {
	id, ok := f.byID[userID]
	if !ok {
		return identity.Identity{}, identity.ErrNotFound
	}
	return id, nil
}

type fakeProfiles struct {
	byID map[string]*profile.Profile
	err  error
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byID[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}
func (f *fakeProfiles) Set(ctx context.Context, userID string, patch profile.Patch) error {
	return nil
}
func (f *fakeProfiles) AddEnrollment(ctx context.Context, userID, courseID string) error {
	return nil
}
func (f *fakeProfiles) List(ctx context.Context, q profile.Query) ([]*profile.Profile, error) {
	return nil, nil
}
func (f *fakeProfiles) Delete(ctx context.Context, userID string) error { return nil }

type authFixture struct {
	sessions   *fakeSessions
	identities *fakeIdentities
	profiles   *fakeProfiles
	auth       *Auth
}

func newAuthFixture() *authFixture {
	sessions := &fakeSessions{sessions: map[string]*session.Session{}}
	identities := &fakeIdentities{byID: map[string]identity.Identity{}}
	profiles := &fakeProfiles{byID: map[string]*profile.Profile{}}
	resolver := sessionstate.NewResolver(profiles, sessions)
	return &authFixture{
		sessions:   sessions,
		identities: identities,
		profiles:   profiles,
		auth:       NewAuth(sessions, identities, resolver),
	}
}

func (f *authFixture) signIn(userID string, verified bool, p *profile.Profile) string {
	sessionID := "sess-" + userID
	f.sessions.sessions[sessionID] = &session.Session{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	f.identities.byID[userID] = identity.Identity{
		UserID: userID, Email: userID + "@example.com", EmailVerified: verified,
	}
	if p != nil {
		f.profiles.byID[userID] = p
	}
	return sessionID
}

func apiRouter(f *authFixture, gate gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/me", f.auth.ResolveSession(), gate, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": SessionFromContext(c).Identity.UserID})
	})
	return r
}

func doGet(t *testing.T, r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_NoCookie(t *testing.T) {
	f := newAuthFixture()
	w := doGet(t, apiRouter(f, RequireAuth()), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_ValidSession(t *testing.T) {
	f := newAuthFixture()
	sid := f.signIn("u1", true, &profile.Profile{
		UserID: "u1", Name: "Asha", Email: "u1@example.com", College: "X",
		Role: profile.RoleUser,
	})

	w := doGet(t, apiRouter(f, RequireAuth()), sid)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"u1"`) {
		t.Errorf("expected resolved user id in body, got %s", w.Body.String())
	}
}

func TestRequireAuth_ExpiredSession(t *testing.T) {
	f := newAuthFixture()
	sid := f.signIn("u1", true, nil)
	f.sessions.sessions[sid].ExpiresAt = time.Now().Add(-time.Minute)

	w := doGet(t, apiRouter(f, RequireAuth()), sid)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired session, got %d", w.Code)
	}
	if _, ok := f.sessions.sessions[sid]; ok {
		t.Error("expired session should have been deleted")
	}
}

func TestRequireAuth_UnverifiedResolvesUnauthenticated(t *testing.T) {
	f := newAuthFixture()
	sid := f.signIn("u1", false, nil)

	w := doGet(t, apiRouter(f, RequireAuth()), sid)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unverified identity, got %d", w.Code)
	}
	if _, ok := f.sessions.sessions[sid]; ok {
		t.Error("unverified session should have been torn down")
	}
}

func TestResolveSession_ProfileStoreFailureIs503(t *testing.T) {
	f := newAuthFixture()
	sid := f.signIn("u1", true, nil)
	f.profiles.err = errors.New("connection refused")

	w := doGet(t, apiRouter(f, RequireAuth()), sid)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("store failure must be 503, not %d", w.Code)
	}
}

func TestResolveSession_SessionStoreFailureIs503(t *testing.T) {
	f := newAuthFixture()
	f.sessions.getErr = errors.New("redis down")

	w := doGet(t, apiRouter(f, RequireAuth()), "some-session")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestRequirePage_RedirectsWithReason(t *testing.T) {
	f := newAuthFixture()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/dashboard", f.auth.ResolveSession(), RequirePage(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Unauthenticated: bounce to login.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?reason=auth_required" {
		t.Errorf("unexpected redirect target %q", loc)
	}

	// Authenticated but incomplete profile: bounce to profile page.
	sid := f.signIn("u1", true, &profile.Profile{
		UserID: "u1", Email: "u1@example.com", Role: profile.RoleUser,
	})
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sid})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/profile?reason=profile_incomplete" {
		t.Errorf("unexpected redirect target %q", loc)
	}
}

func TestRequireAdmin(t *testing.T) {
	f := newAuthFixture()
	r := apiRouter(f, RequireAdmin())

	userSID := f.signIn("u1", true, &profile.Profile{
		UserID: "u1", Name: "U", Email: "u1@example.com", College: "X",
		Role: profile.RoleUser,
	})
	adminSID := f.signIn("a1", true, &profile.Profile{
		UserID: "a1", Name: "A", Email: "a1@example.com", College: "X",
		Role: profile.RoleAdmin,
	})

	if w := doGet(t, r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected 401, got %d", w.Code)
	}
	if w := doGet(t, r, userSID); w.Code != http.StatusForbidden {
		t.Errorf("plain user: expected 403, got %d", w.Code)
	}
	if w := doGet(t, r, adminSID); w.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", w.Code)
	}
}
