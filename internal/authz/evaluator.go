// Package authz is the single authority for "may this session do this".
// Every call site (route guard, admin console, course pages) asks these
// functions instead of re-implementing role checks. All functions are
// pure, synchronous and total: they never error, never panic, and
// answer false for any session state they do not recognize.
package authz

import (
	"startosedge/internal/profile"
	"startosedge/internal/sessionstate"
)

// CanAccessCourse reports whether the session may open the course.
// Admins see every course; everyone else needs the course id in their
// enrollment set. Unauthenticated sessions and sessions without a
// profile are always denied.
func CanAccessCourse(s sessionstate.Session, courseID string) bool {
	if !s.Authenticated {
		return false
	}
	if s.IsAdmin {
		return true
	}
	if s.Profile == nil {
		return false
	}
	return s.Profile.EnrolledIn(courseID)
}

// CanAccessAdminConsole reports whether the session may open the admin
// console at all.
func CanAccessAdminConsole(s sessionstate.Session) bool {
	return s.Authenticated && s.IsAdmin
}

// CanMutateRole reports whether the session may change any role to
// newRole. Only super admins may touch roles; plain admins may not
// change anyone's role, including their own, regardless of direction.
func CanMutateRole(s sessionstate.Session, newRole profile.Role) bool {
	_ = newRole // every target role requires the same privilege
	return s.Authenticated && s.IsSuperAdmin
}

// CanDeleteUser reports whether the session may delete the target user.
// The target's role is supplied by the caller after a lookup; the
// evaluator performs no I/O. Self-deletion is always forbidden, as is
// deleting a super admin.
func CanDeleteUser(s sessionstate.Session, targetUserID string, targetRole profile.Role) bool {
	if !s.Authenticated || !s.IsAdmin {
		return false
	}
	if targetUserID == s.Identity.UserID {
		return false
	}
	return targetRole != profile.RoleSuperAdmin
}
