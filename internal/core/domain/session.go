package domain

// TokenKind selects how an upstream call authenticates itself: admins carry a
// bearer token, clients may carry a portal token instead.
type TokenKind string

const (
	TokenBearer TokenKind = "bearer"
	TokenPortal TokenKind = "portal"
)

// Session is the single source of truth for "who is logged in". It is created
// by the session service, persisted in the session store, and handed to guards
// and handlers through the request context.
//
// Invariant: a non-None identity always carries a non-empty Token.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token,omitempty"`
	TokenKind TokenKind `json:"token_kind,omitempty"`

	// Loading marks a session whose state is still being established (the
	// initial check or an in-flight revalidation). Guards must not issue a
	// redirect while Loading is true.
	Loading bool `json:"loading,omitempty"`

	// Generation is the logical clock value at the start of the credential
	// exchange that produced this session. Exchanges that a newer logout of
	// the same user overtakes are discarded instead of persisted.
	Generation uint64 `json:"generation"`
}

// AnonymousSession returns the session an unauthenticated request resolves to.
func AnonymousSession() *Session {
	return &Session{Identity: Anonymous}
}

// Authenticated reports whether the session carries a real identity.
func (s *Session) Authenticated() bool {
	return s != nil && !s.Identity.IsNone()
}
