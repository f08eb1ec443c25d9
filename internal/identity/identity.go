package identity

// Identity is the authentication record as seen by the rest of the
// application: a stable user id plus the facts needed for authorization.
// It carries facts only, no decisions.
type Identity struct {
	UserID        string // stable opaque identifier (users.id)
	Email         string
	EmailVerified bool
}

// ProviderIdentity is a normalized external identity returned by an
// OAuth provider before it has been resolved to an internal user.
type ProviderIdentity struct {
	Provider       string // e.g. "google"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string
	EmailVerified  bool // whether provider asserts email ownership
}
