package profile

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("profile not found")
)

// Patch is a partial profile write. Nil fields are left untouched
// (merge semantics, matching per-record atomicity of the store).
// Role and Enrolled are privileged fields: handlers strip them from
// self-service writes, only the admin console sets them.
type Patch struct {
	Name           *string
	Email          *string
	Phone          *string
	College        *string
	Degree         *string
	GraduationYear *string
	Bio            *string
	Skills         *[]string
	Github         *string
	Linkedin       *string
	Portfolio      *string
	Role           *Role
	Enrolled       *[]string
}

// Query filters the admin listing. Zero value lists everything.
type Query struct {
	Role Role // empty = all roles
}

// Store is the narrow interface to the profile record store. Get
// returns ErrNotFound for missing records; any other error means the
// store is unavailable and callers must not treat it as "no profile".
type Store interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Set(ctx context.Context, userID string, patch Patch) error
	AddEnrollment(ctx context.Context, userID, courseID string) error
	List(ctx context.Context, q Query) ([]*Profile, error)
	Delete(ctx context.Context, userID string) error
}
