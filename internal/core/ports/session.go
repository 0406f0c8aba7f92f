package ports

import (
	"context"

	"github.com/playvault/client-gateway/internal/core/domain"
)

// SessionService owns all session mutation. Guards and handlers read the
// session from the request context; only these operations change it.
type SessionService interface {
	// Login is the admin credential path.
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	// ClientLogin is the client credential path, separate from admin login.
	ClientLogin(ctx context.Context, username, password string) (*domain.Session, error)
	// Signup registers a new client and logs it in.
	Signup(ctx context.Context, in SignupInput) (*domain.Session, error)
	// ValidateMagicToken exchanges a magic-link token for a client session.
	ValidateMagicToken(ctx context.Context, token string) (*domain.Session, error)
	// Logout clears the stored session. Idempotent; always succeeds on a
	// missing session.
	Logout(ctx context.Context, sessionID string) error
	// Resolve loads the session for a request; unknown or expired ids
	// resolve to the anonymous session, never to an error the caller must
	// branch on.
	Resolve(ctx context.Context, sessionID string) (*domain.Session, error)
}

// SessionStore persists sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Find(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// ReplayGuard remembers magic-link tokens that were already exchanged, so a
// replayed link is rejected at the edge without another upstream round trip.
type ReplayGuard interface {
	Seen(ctx context.Context, token string) (bool, error)
	Mark(ctx context.Context, token string) error
}
