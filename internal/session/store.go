package session

import (
	"context"
	"time"
)

// Session is the persisted provider session. It intentionally stores
// only identity pointers, not authorization state: roles, enrollments
// and verification are re-read on every resolution so a demotion or an
// un-verification takes effect without waiting for session expiry.
type Session struct {
	SessionID string    // unique session identifier
	UserID    string    // references users.id
	CreatedAt time.Time // issue time
	ExpiresAt time.Time // absolute expiry time
}

// Store defines how provider sessions are stored and retrieved.
// Implementations (e.g., Redis) must remain stateless and opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
