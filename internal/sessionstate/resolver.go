package sessionstate

import (
	"context"
	"errors"
	"fmt"

	"startosedge/internal/identity"
	"startosedge/internal/logger"
	"startosedge/internal/profile"
)

// ErrStoreUnavailable marks a failed profile fetch for an otherwise
// valid signed-in user. Callers must surface it as a retryable state;
// treating it as "not authenticated" would bounce a legitimate user to
// the login page on a transient network failure.
var ErrStoreUnavailable = errors.New("sessionstate: profile store unavailable")

// SessionEnder is the slice of the provider session store the resolver
// needs: the ability to terminate a session it refuses to honor.
type SessionEnder interface {
	Delete(ctx context.Context, sessionID string) error
}

// Resolver turns raw identity events into Session snapshots. It is the
// single source of truth for authorization context; nothing else reads
// the profile store to answer "who is this".
type Resolver struct {
	profiles profile.Store
	sessions SessionEnder
}

func NewResolver(profiles profile.Store, sessions SessionEnder) *Resolver {
	return &Resolver{profiles: profiles, sessions: sessions}
}

// Resolve computes the Session for one identity event. It is
// idempotent: the same event against unchanged stores yields an
// identical Session value.
//
// An unverified sign-in resolves to the same unauthenticated Session as
// a signed-out user, and additionally tears down the provider session
// so no partially-authenticated state survives the attempt.
func (r *Resolver) Resolve(ctx context.Context, ev identity.Event) (Session, error) {
	if ev.Kind == identity.SignedOut {
		return Unauthenticated(), nil
	}

	if !ev.Identity.EmailVerified {
		if ev.SessionID != "" && r.sessions != nil {
			if err := r.sessions.Delete(ctx, ev.SessionID); err != nil {
				logger.Warn("failed to clear unverified session", map[string]any{
					"user_id": ev.Identity.UserID,
					"error":   err.Error(),
				})
			}
		}
		return Unauthenticated(), nil
	}

	p, err := r.profiles.Get(ctx, ev.Identity.UserID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			// Verified identity without a profile yet: authenticated,
			// incomplete, no privileges.
			return fromProfile(ev.Identity, nil), nil
		}
		return Session{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return fromProfile(ev.Identity, p), nil
}
