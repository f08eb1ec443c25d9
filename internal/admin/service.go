package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"startosedge/internal/authz"
	"startosedge/internal/course"
	"startosedge/internal/identity"
	"startosedge/internal/logger"
	"startosedge/internal/profile"
	"startosedge/internal/session"
	"startosedge/internal/sessionstate"
)

var (
	ErrForbidden = errors.New("admin: forbidden")
	ErrNotFound  = errors.New("admin: not found")

	// ErrIdentityOrphaned: the profile record was removed but the
	// privileged identity delete failed. The two stores are not
	// transactional; callers retry DeleteUser, which tolerates the
	// already-missing profile and finishes the identity delete.
	ErrIdentityOrphaned = errors.New("admin: profile deleted but identity remains")
)

// IdentityDirectory is the slice of the identity store the console
// needs: lookups for targeting and the privileged delete.
type IdentityDirectory interface {
	GetByID(ctx context.Context, userID string) (identity.Identity, error)
	GetByEmail(ctx context.Context, email string) (identity.Identity, error)
	Delete(ctx context.Context, userID string) error
}

// Service performs the privileged mutations behind the admin console.
// Every mutation re-resolves the acting user's session first; an admin
// demoted mid-session loses privileges on their next operation, not at
// their next login.
type Service struct {
	profiles   profile.Store
	courses    course.Store
	identities IdentityDirectory
	sessions   session.Store
	resolver   *sessionstate.Resolver
}

func NewService(
	profiles profile.Store,
	courses course.Store,
	identities IdentityDirectory,
	sessions session.Store,
	resolver *sessionstate.Resolver,
) *Service {
	return &Service{
		profiles:   profiles,
		courses:    courses,
		identities: identities,
		sessions:   sessions,
		resolver:   resolver,
	}
}

// refreshActor builds a fresh session for the acting user, ignoring
// whatever snapshot the caller may have cached.
func (s *Service) refreshActor(ctx context.Context, actorUserID string) (sessionstate.Session, error) {
	id, err := s.identities.GetByID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return sessionstate.Unauthenticated(), nil
		}
		return sessionstate.Session{}, err
	}
	return s.resolver.Resolve(ctx, identity.Event{
		Kind:     identity.SignedIn,
		Identity: id,
	})
}

// GrantCourseAccess adds the course to the target user's enrollment
// set. Granting an already-granted course is a no-op. The course id is
// validated against the content store first so typos surface as
// NotFound instead of dead enrollments.
func (s *Service) GrantCourseAccess(ctx context.Context, actorUserID, targetEmail, courseID string) error {
	actor, err := s.refreshActor(ctx, actorUserID)
	if err != nil {
		return err
	}
	if !authz.CanAccessAdminConsole(actor) {
		return ErrForbidden
	}

	if _, err := s.courses.Get(ctx, courseID); err != nil {
		if errors.Is(err, course.ErrNotFound) {
			return fmt.Errorf("%w: course %s", ErrNotFound, courseID)
		}
		return err
	}

	target, err := s.identities.GetByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, targetEmail)
		}
		return err
	}

	if err := s.profiles.AddEnrollment(ctx, target.UserID, courseID); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return fmt.Errorf("%w: profile for %s", ErrNotFound, targetEmail)
		}
		return err
	}

	logger.Info("course access granted", map[string]any{
		"actor":  actorUserID,
		"target": target.UserID,
		"course": courseID,
	})
	return nil
}

// SetRole changes the target user's role. Super admin only; the role
// string must be one of the known roles.
func (s *Service) SetRole(ctx context.Context, actorUserID, targetUserID string, newRole profile.Role) error {
	actor, err := s.refreshActor(ctx, actorUserID)
	if err != nil {
		return err
	}
	if !authz.CanMutateRole(actor, newRole) {
		return ErrForbidden
	}
	if !profile.ValidRole(newRole) {
		return fmt.Errorf("admin: invalid role %q", newRole)
	}

	patch := profile.Patch{Role: &newRole}
	if err := s.profiles.Set(ctx, targetUserID, patch); err != nil {
		return err
	}

	logger.Info("role changed", map[string]any{
		"actor":  actorUserID,
		"target": targetUserID,
		"role":   string(newRole),
	})
	return nil
}

// DeleteUser removes the target's profile record, then the identity
// record and any live provider sessions. The deletes span two stores
// and are not atomic: if the identity delete fails after the profile is
// gone, ErrIdentityOrphaned is returned and the whole call is safe to
// retry.
func (s *Service) DeleteUser(ctx context.Context, actorUserID, targetUserID string) error {
	actor, err := s.refreshActor(ctx, actorUserID)
	if err != nil {
		return err
	}

	targetRole := profile.RoleUser
	p, err := s.profiles.Get(ctx, targetUserID)
	switch {
	case err == nil:
		targetRole = p.Role
	case errors.Is(err, profile.ErrNotFound):
		// No profile: fine, might be a retry after an orphaned delete.
	default:
		return err
	}

	if !authz.CanDeleteUser(actor, targetUserID, targetRole) {
		return ErrForbidden
	}

	if err := s.profiles.Delete(ctx, targetUserID); err != nil && !errors.Is(err, profile.ErrNotFound) {
		return err
	}

	if err := s.identities.Delete(ctx, targetUserID); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			// Both records gone, nothing to orphan.
			return nil
		}
		logger.Error("identity delete failed after profile delete", map[string]any{
			"target": targetUserID,
			"error":  err.Error(),
		})
		return fmt.Errorf("%w: %v", ErrIdentityOrphaned, err)
	}

	if err := s.sessions.DeleteAllForUser(ctx, targetUserID); err != nil {
		logger.Warn("failed to clear sessions of deleted user", map[string]any{
			"target": targetUserID,
			"error":  err.Error(),
		})
	}

	logger.Info("user deleted", map[string]any{
		"actor":  actorUserID,
		"target": targetUserID,
	})
	return nil
}

// ListQuery narrows the admin user listing. Search is a case-
// insensitive substring match over name and email; Role filters
// exactly; both are applied to the loaded list, stats are not.
type ListQuery struct {
	Search string
	Role   profile.Role // empty = all
}

// Stats are the console's counters, recomputed from the full loaded
// user list on every call.
type Stats struct {
	Total          int `json:"total"`
	Users          int `json:"users"`
	Admins         int `json:"admins"`
	SuperAdmins    int `json:"super_admins"`
	WithEnrollment int `json:"with_enrollment"`
}

// ListUsers returns the (filtered) user list plus stats over the whole
// list. Admin only.
func (s *Service) ListUsers(ctx context.Context, actorUserID string, q ListQuery) ([]*profile.Profile, Stats, error) {
	actor, err := s.refreshActor(ctx, actorUserID)
	if err != nil {
		return nil, Stats{}, err
	}
	if !authz.CanAccessAdminConsole(actor) {
		return nil, Stats{}, ErrForbidden
	}

	all, err := s.profiles.List(ctx, profile.Query{})
	if err != nil {
		return nil, Stats{}, err
	}

	stats := computeStats(all)

	filtered := make([]*profile.Profile, 0, len(all))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, p := range all {
		if q.Role != "" && p.Role != q.Role {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Email), needle) {
			continue
		}
		filtered = append(filtered, p)
	}

	return filtered, stats, nil
}

func computeStats(list []*profile.Profile) Stats {
	st := Stats{Total: len(list)}
	for _, p := range list {
		switch p.Role {
		case profile.RoleSuperAdmin:
			st.SuperAdmins++
		case profile.RoleAdmin:
			st.Admins++
		default:
			st.Users++
		}
		if len(p.Enrolled) > 0 {
			st.WithEnrollment++
		}
	}
	return st
}
