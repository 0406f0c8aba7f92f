package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/playvault/client-gateway/internal/core/domain"
	"github.com/playvault/client-gateway/internal/core/ports"
)

// SessionService implements login, logout, and magic-link validation on top of
// the platform API and the session store.
//
// A logical clock protects against stale async responses: every credential
// exchange snapshots the clock before calling upstream, Logout records a
// per-user logout mark, and a response for a user who logged out after the
// exchange started is discarded instead of resurrecting a session that was
// cleared in the meantime. The mark is scoped to the user, so one visitor's
// logout never discards an unrelated visitor's login.
type SessionService struct {
	platform ports.PlatformClient
	store    ports.SessionStore
	replay   ports.ReplayGuard
	logger   zerolog.Logger

	clock atomic.Uint64

	mu          sync.Mutex
	logoutAfter map[string]uint64
}

func NewSessionService(platform ports.PlatformClient, store ports.SessionStore, logger zerolog.Logger) *SessionService {
	return &SessionService{
		platform:    platform,
		store:       store,
		logger:      logger,
		logoutAfter: make(map[string]uint64),
	}
}

// WithReplayGuard enables edge-side rejection of already-used magic links.
func (s *SessionService) WithReplayGuard(g ports.ReplayGuard) *SessionService {
	s.replay = g
	return s
}

// Login is the admin credential path.
func (s *SessionService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	start := s.clock.Add(1)
	res, err := s.platform.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, start, res, "login")
}

// ClientLogin is the client credential path, separate from admin login.
func (s *SessionService) ClientLogin(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	start := s.clock.Add(1)
	res, err := s.platform.ClientLogin(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, start, res, "client_login")
}

// Signup registers a new client upstream and opens a session for it.
func (s *SessionService) Signup(ctx context.Context, in ports.SignupInput) (*domain.Session, error) {
	if in.Username == "" || in.Password == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"username": "username is required",
			"password": "password is required",
		}}
	}

	start := s.clock.Add(1)
	res, err := s.platform.Signup(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, start, res, "signup")
}

// ValidateMagicToken exchanges a magic-link token for a client session.
// Failures distinguish a dead token (terminal, go to login) from an
// unreachable upstream (transient, offer retry).
func (s *SessionService) ValidateMagicToken(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalidOrExpired
	}

	// A token that already opened a session is dead, no matter what upstream
	// would say about it. The guard is best effort: when it cannot answer we
	// fall through and let upstream decide.
	if s.replay != nil {
		if seen, err := s.replay.Seen(ctx, token); err != nil {
			s.logger.Warn().Err(err).Msg("magic link replay check unavailable")
		} else if seen {
			return nil, domain.ErrTokenInvalidOrExpired
		}
	}

	start := s.clock.Add(1)
	res, err := s.platform.ValidateMagicToken(ctx, token)
	if err != nil {
		return nil, err
	}

	sess, err := s.persist(ctx, start, res, "magic_link")
	if err != nil {
		return nil, err
	}
	if s.replay != nil {
		if err := s.replay.Mark(ctx, token); err != nil {
			s.logger.Warn().Err(err).Msg("magic link replay mark failed")
		}
	}
	return sess, nil
}

// Logout clears the stored session and records a logout mark for its user so
// that user's in-flight credential exchanges are discarded on completion.
// Idempotent: a second call on an already-cleared session is a no-op.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	// Look the session up before deleting it: the logout supersedes only this
	// user's pending exchanges, never anyone else's.
	if sess, err := s.store.Find(ctx, sessionID); err == nil && sess.Authenticated() {
		mark := s.clock.Add(1)
		s.mu.Lock()
		s.logoutAfter[sess.Identity.Username] = mark
		s.mu.Unlock()
	}

	if err := s.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("logout: delete failed")
		return err
	}

	s.logger.Info().Str("session_id", sessionID).Msg("session cleared")
	return nil
}

// Resolve loads the session for a request. Unknown ids resolve to the
// anonymous session. A store failure resolves to a loading session: the
// caller cannot tell whether the visitor is authenticated, so guards must
// hold their redirect decision rather than bounce a possibly-valid user.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return domain.AnonymousSession(), nil
	}

	sess, err := s.store.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.AnonymousSession(), nil
		}
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("resolve: store unavailable")
		return &domain.Session{ID: sessionID, Identity: domain.Anonymous, Loading: true}, nil
	}
	return sess, nil
}

// persist stores the session produced by a successful credential exchange,
// unless the same user's logout has superseded it since the exchange started.
// A reply without a token or a known role never becomes a session.
func (s *SessionService) persist(ctx context.Context, start uint64, res *ports.AuthResult, op string) (*domain.Session, error) {
	if res.Token == "" || (!res.Identity.IsClient() && !res.Identity.IsAdmin()) {
		s.logger.Error().
			Str("op", op).
			Str("role", string(res.Identity.Kind)).
			Bool("has_token", res.Token != "").
			Msg("rejecting malformed auth reply")
		return nil, domain.ErrMalformedAuthReply
	}

	if s.loggedOutSince(res.Identity.Username, start) {
		s.logger.Info().Str("op", op).Str("username", res.Identity.Username).Msg("discarding superseded auth response")
		return nil, domain.ErrSessionSuperseded
	}

	sess := &domain.Session{
		ID:         uuid.NewString(),
		Identity:   res.Identity,
		Token:      res.Token,
		TokenKind:  res.TokenKind,
		Generation: start,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("op", op).
		Str("session_id", sess.ID).
		Str("role", string(sess.Identity.Kind)).
		Msg("session established")

	return sess, nil
}

// loggedOutSince reports whether username logged out after the clock value
// start was taken.
func (s *SessionService) loggedOutSince(username string, start uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutAfter[username] > start
}
