// Package guard decides render-or-redirect for protected pages. It is
// the only consumer of session snapshots that turns them into
// navigation outcomes; pages never encode redirect rules themselves.
package guard

import (
	"startosedge/internal/sessionstate"
)

type State int

const (
	// StateLoading: no resolution has completed for the latest identity
	// event. Consumers render a neutral placeholder and MUST NOT
	// redirect; redirecting before resolution completes is the exact
	// flash-of-login race this package exists to prevent.
	StateLoading State = iota
	StateGranted
	StateRedirect
	// StateUnavailable: the profile store failed for a signed-in user.
	// Retryable. Never collapsed into a login redirect.
	StateUnavailable
)

const (
	LoginPath   = "/login"
	ProfilePath = "/profile"

	ReasonAuthRequired      = "auth_required"
	ReasonProfileIncomplete = "profile_incomplete"
)

// Decision is the guard's verdict for one path under one session.
type Decision struct {
	State  State
	Target string // redirect target, set iff State == StateRedirect
	Reason string
}

func granted() Decision {
	return Decision{State: StateGranted}
}

func redirect(target, reason string) Decision {
	return Decision{State: StateRedirect, Target: target, Reason: reason}
}

// Evaluate maps a resolved session and a requested path to a terminal
// decision. The profile page bypasses the completeness check (otherwise
// an incomplete profile would be a permanent lockout) but never the
// authentication check.
func Evaluate(s sessionstate.Session, path string) Decision {
	if !s.Authenticated {
		return redirect(LoginPath, ReasonAuthRequired)
	}
	if !s.ProfileComplete && path != ProfilePath {
		return redirect(ProfilePath, ReasonProfileIncomplete)
	}
	return granted()
}
