package sessionstate

import (
	"startosedge/internal/identity"
	"startosedge/internal/profile"
)

// Session is the resolved authorization context derived from an
// identity event plus the matching profile record. It is recomputed on
// every identity change and never persisted; every consumer (route
// guard, admin console, pages) reads this one type instead of
// re-deriving role checks.
type Session struct {
	Authenticated   bool
	Identity        identity.Identity // zero value when unauthenticated
	Profile         *profile.Profile  // nil until first authenticated write
	ProfileComplete bool
	IsAdmin         bool
	IsSuperAdmin    bool
}

// Unauthenticated is the session handed out for signed-out users and
// for signed-in users whose email is not verified. The two cases are
// indistinguishable from the outside.
func Unauthenticated() Session {
	return Session{}
}

func fromProfile(id identity.Identity, p *profile.Profile) Session {
	s := Session{
		Authenticated: true,
		Identity:      id,
		Profile:       p,
	}
	if p != nil {
		s.ProfileComplete = profile.Complete(p)
		s.IsAdmin = p.Role.Elevated()
		s.IsSuperAdmin = p.Role == profile.RoleSuperAdmin
	}
	return s
}
