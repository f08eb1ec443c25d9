package profile

import (
	"math"
	"strings"
	"time"
)

// Role is the application-level privilege tier stored on a profile.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole normalizes a role string from storage. Anything that is not
// an exact known role collapses to RoleUser: an unrecognized value must
// never grant elevated access.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleUser
	}
}

// ValidRole reports whether r is one of the known roles. Admin input
// is rejected on mismatch rather than collapsed like ParseRole does
// for stored values.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin || r == RoleSuperAdmin
}

// Elevated reports whether the role carries admin privileges.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Profile is the application-owned record of user attributes, role and
// enrollments. It is keyed 1:1 by the identity's user id and created
// lazily on the first authenticated write.
type Profile struct {
	UserID         string
	Name           string
	Email          string
	Phone          string
	College        string
	Degree         string
	GraduationYear string
	Bio            string
	Skills         []string
	Github         string
	Linkedin       string
	Portfolio      string
	Role           Role
	Enrolled       []string // course ids, set semantics
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EnrolledIn reports whether the profile's enrollment set contains the
// given course id.
func (p *Profile) EnrolledIn(courseID string) bool {
	for _, id := range p.Enrolled {
		if id == courseID {
			return true
		}
	}
	return false
}

// Complete reports whether the mandatory fields (name, email, college)
// are non-empty after trimming. This is the only completeness check that
// gates access; the percentage below is cosmetic and must not be used
// for gating.
func Complete(p *Profile) bool {
	if p == nil {
		return false
	}
	return strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.Email) != "" &&
		strings.TrimSpace(p.College) != ""
}

// CompletionPercent returns how much of the profile is filled in, as a
// percentage over all eleven user-editable fields, rounded to the
// nearest integer. Feeds the profile-page progress bar only.
func CompletionPercent(p *Profile) int {
	if p == nil {
		return 0
	}

	fields := []bool{
		strings.TrimSpace(p.Name) != "",
		strings.TrimSpace(p.Email) != "",
		strings.TrimSpace(p.Phone) != "",
		strings.TrimSpace(p.College) != "",
		strings.TrimSpace(p.Degree) != "",
		strings.TrimSpace(p.GraduationYear) != "",
		strings.TrimSpace(p.Bio) != "",
		len(p.Skills) > 0,
		strings.TrimSpace(p.Github) != "",
		strings.TrimSpace(p.Linkedin) != "",
		strings.TrimSpace(p.Portfolio) != "",
	}

	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}

	return int(math.Round(float64(filled) / float64(len(fields)) * 100))
}
