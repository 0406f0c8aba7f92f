package domain

// IdentityKind is the closed set of roles a session can hold.
type IdentityKind string

const (
	IdentityNone   IdentityKind = "none"
	IdentityClient IdentityKind = "client"
	IdentityAdmin  IdentityKind = "admin"
)

// Identity describes who occupies the current session. The zero value is the
// anonymous identity (Kind == "" is treated as IdentityNone).
type Identity struct {
	Kind         IdentityKind `json:"kind"`
	ID           string       `json:"id,omitempty"`
	Username     string       `json:"username,omitempty"`
	DisplayName  string       `json:"display_name,omitempty"`
	ReferralCode string       `json:"referral_code,omitempty"`
}

// Anonymous is the identity of an unauthenticated session.
var Anonymous = Identity{Kind: IdentityNone}

// IsNone reports whether the identity is unauthenticated.
func (i Identity) IsNone() bool {
	return i.Kind == IdentityNone || i.Kind == ""
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Kind == IdentityAdmin
}

// IsClient reports whether the identity holds the client role.
func (i Identity) IsClient() bool {
	return i.Kind == IdentityClient
}
