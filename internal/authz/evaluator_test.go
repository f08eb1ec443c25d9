package authz

import (
	"testing"

	"startosedge/internal/identity"
	"startosedge/internal/profile"
	"startosedge/internal/sessionstate"
)

func sessionFor(p *profile.Profile) sessionstate.Session {
	s := sessionstate.Session{
		Authenticated: true,
		Identity:      identity.Identity{UserID: "u1", Email: "u1@example.com", EmailVerified: true},
		Profile:       p,
	}
	if p != nil {
		s.ProfileComplete = profile.Complete(p)
		s.IsAdmin = p.Role.Elevated()
		s.IsSuperAdmin = p.Role == profile.RoleSuperAdmin
	}
	return s
}

func TestCanAccessCourse_Unauthenticated(t *testing.T) {
	if CanAccessCourse(sessionstate.Unauthenticated(), "c1") {
		t.Error("unauthenticated session must never access a course")
	}
}

func TestCanAccessCourse_NilProfile(t *testing.T) {
	if CanAccessCourse(sessionFor(nil), "c1") {
		t.Error("session without a profile must be denied")
	}
}

func TestCanAccessCourse_Enrollment(t *testing.T) {
	p := &profile.Profile{UserID: "u1", Role: profile.RoleUser, Enrolled: []string{"c1"}}
	s := sessionFor(p)

	if !CanAccessCourse(s, "c1") {
		t.Error("enrolled course must be accessible")
	}
	if CanAccessCourse(s, "c2") {
		t.Error("unenrolled course must be denied")
	}
}

func TestCanAccessCourse_MonotonicInEnrollment(t *testing.T) {
	p := &profile.Profile{UserID: "u1", Role: profile.RoleUser, Enrolled: []string{"c1"}}
	before := sessionFor(p)

	grown := &profile.Profile{UserID: "u1", Role: profile.RoleUser, Enrolled: []string{"c1", "c2"}}
	after := sessionFor(grown)

	// Adding c2 may only grant, never revoke access to other ids.
	for _, id := range []string{"c1", "c2", "c3"} {
		if CanAccessCourse(before, id) && !CanAccessCourse(after, id) {
			t.Errorf("adding an enrollment revoked access to %s", id)
		}
	}
	if !CanAccessCourse(after, "c2") {
		t.Error("added enrollment must grant access")
	}
}

func TestCanAccessCourse_AdminSeesEverything(t *testing.T) {
	p := &profile.Profile{UserID: "u1", Role: profile.RoleAdmin}
	if !CanAccessCourse(sessionFor(p), "anything") {
		t.Error("admin must access any course without enrollment")
	}
}

func TestCanAccessAdminConsole(t *testing.T) {
	cases := []struct {
		role profile.Role
		want bool
	}{
		{profile.RoleUser, false},
		{profile.RoleAdmin, true},
		{profile.RoleSuperAdmin, true},
	}
	for _, tc := range cases {
		p := &profile.Profile{UserID: "u1", Role: tc.role}
		if got := CanAccessAdminConsole(sessionFor(p)); got != tc.want {
			t.Errorf("role %q: console access = %v, want %v", tc.role, got, tc.want)
		}
	}
	if CanAccessAdminConsole(sessionstate.Unauthenticated()) {
		t.Error("unauthenticated session must not reach the console")
	}
}

func TestCanMutateRole_AdminAlwaysDenied(t *testing.T) {
	adminSess := sessionFor(&profile.Profile{UserID: "u1", Role: profile.RoleAdmin})

	// Plain admins may not change any role, including demotions and
	// their own.
	for _, target := range []profile.Role{profile.RoleUser, profile.RoleAdmin, profile.RoleSuperAdmin} {
		if CanMutateRole(adminSess, target) {
			t.Errorf("admin must not set role %q", target)
		}
	}
}

func TestCanMutateRole_SuperAdmin(t *testing.T) {
	s := sessionFor(&profile.Profile{UserID: "u1", Role: profile.RoleSuperAdmin})
	for _, target := range []profile.Role{profile.RoleUser, profile.RoleAdmin, profile.RoleSuperAdmin} {
		if !CanMutateRole(s, target) {
			t.Errorf("super admin must be able to set role %q", target)
		}
	}
}

func TestCanDeleteUser_SelfAlwaysForbidden(t *testing.T) {
	s := sessionFor(&profile.Profile{UserID: "u1", Role: profile.RoleSuperAdmin})
	if CanDeleteUser(s, "u1", profile.RoleUser) {
		t.Error("self-deletion must be forbidden regardless of role")
	}
}

func TestCanDeleteUser_SuperAdminTargetProtected(t *testing.T) {
	s := sessionFor(&profile.Profile{UserID: "u1", Role: profile.RoleAdmin})
	if CanDeleteUser(s, "u2", profile.RoleSuperAdmin) {
		t.Error("super admin targets must not be deletable")
	}
	if !CanDeleteUser(s, "u2", profile.RoleUser) {
		t.Error("admin must be able to delete a plain user")
	}
}

func TestCanDeleteUser_NonAdmin(t *testing.T) {
	s := sessionFor(&profile.Profile{UserID: "u1", Role: profile.RoleUser})
	if CanDeleteUser(s, "u2", profile.RoleUser) {
		t.Error("non-admin must not delete users")
	}
}
