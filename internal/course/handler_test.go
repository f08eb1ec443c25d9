package course

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"startosedge/internal/identity"
	"startosedge/internal/middleware"
	"startosedge/internal/profile"
	"startosedge/internal/sessionstate"

	"github.com/gin-gonic/gin"
)

type fakeStore struct {
	courses map[string]*Course
}

func (f *fakeStore) Get(ctx context.Context, id string) (*Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) List(ctx context.Context, filter Filter) ([]*Course, error) {
	var out []*Course
	for _, c := range f.courses {
		out = append(out, c)
	}
	return out, nil
}

func newRouter(store Store, sess sessionstate.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { middleware.SetSession(c, sess) })
	NewHandler(store).RegisterProtected(&r.RouterGroup)
	return r
}

func sessionWithEnrollments(courseIDs ...string) sessionstate.Session {
	return sessionstate.Session{
		Authenticated: true,
		Identity:      identity.Identity{UserID: "u1", EmailVerified: true},
		Profile: &profile.Profile{
			UserID: "u1", Role: profile.RoleUser, Enrolled: courseIDs,
		},
		ProfileComplete: true,
	}
}

func TestGetCourse_Enrolled(t *testing.T) {
	store := &fakeStore{courses: map[string]*Course{
		"c1": {ID: "c1", Title: "Go Bootcamp", PriceCents: 49900},
	}}
	r := newRouter(store, sessionWithEnrollments("c1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/c1", nil))

	if w.Code != http.StatusOK {
		t.Errorf("enrolled user expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetCourse_NotEnrolledGetsPurchaseContext(t *testing.T) {
	store := &fakeStore{courses: map[string]*Course{
		"c1": {ID: "c1", Title: "Go Bootcamp", PriceCents: 49900},
	}}
	r := newRouter(store, sessionWithEnrollments())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/c1", nil))

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"purchase_required", `"c1"`, "49900"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q: %s", want, body)
		}
	}
}

func TestGetCourse_AdminWithoutEnrollment(t *testing.T) {
	store := &fakeStore{courses: map[string]*Course{
		"c1": {ID: "c1", Title: "Go Bootcamp"},
	}}
	sess := sessionWithEnrollments()
	sess.Profile.Role = profile.RoleAdmin
	sess.IsAdmin = true
	r := newRouter(store, sess)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/c1", nil))

	if w.Code != http.StatusOK {
		t.Errorf("admin expected 200 without enrollment, got %d", w.Code)
	}
}

func TestGetCourse_NotFound(t *testing.T) {
	r := newRouter(&fakeStore{courses: map[string]*Course{}}, sessionWithEnrollments())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestEnrollRequest(t *testing.T) {
	store := &fakeStore{courses: map[string]*Course{
		"c1": {ID: "c1", Title: "Go Bootcamp", PriceCents: 49900},
	}}

	// Not enrolled: acknowledged with purchase context.
	r := newRouter(store, sessionWithEnrollments())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/courses/c1/enroll-request", nil))
	if w.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "purchase_required") {
		t.Errorf("expected purchase_required status, got %s", w.Body.String())
	}

	// Already enrolled: idempotent answer, no second purchase flow.
	r = newRouter(store, sessionWithEnrollments("c1"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/courses/c1/enroll-request", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already_enrolled") {
		t.Errorf("expected already_enrolled status, got %s", w.Body.String())
	}
}
