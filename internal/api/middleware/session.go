package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/core/domain"
	"github.com/playvault/client-gateway/internal/core/ports"
)

const (
	// SessionCookie is the cookie carrying the signed session reference.
	SessionCookie = "pv_session"

	sessionContextKey = "session"
)

// Session resolves the request's session and injects it into the echo
// context. The cookie value is a signed JWT carrying only the session id; the
// session store remains the source of truth. A missing, tampered, or expired
// cookie resolves to the anonymous session, never to an error.
func Session(svc ports.SessionService, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(sessionContextKey, ResolveSession(c, svc, secret))
			return next(c)
		}
	}
}

// ResolveSession resolves the session for a request, reusing a session
// already placed in the context by an earlier middleware.
func ResolveSession(c echo.Context, svc ports.SessionService, secret string) *domain.Session {
	if sess, ok := c.Get(sessionContextKey).(*domain.Session); ok {
		return sess
	}

	sid := sessionIDFromCookie(c, secret)
	if sid == "" {
		return domain.AnonymousSession()
	}

	sess, err := svc.Resolve(c.Request().Context(), sid)
	if err != nil || sess == nil {
		return domain.AnonymousSession()
	}
	return sess
}

// SessionFrom returns the session injected by the Session middleware.
func SessionFrom(c echo.Context) *domain.Session {
	if sess, ok := c.Get(sessionContextKey).(*domain.Session); ok {
		return sess
	}
	return domain.AnonymousSession()
}

// SetSession overrides the context session. Used by auth handlers after a
// login so downstream middleware sees the fresh session, and by tests.
func SetSession(c echo.Context, sess *domain.Session) {
	c.Set(sessionContextKey, sess)
}

// IssueSessionCookie signs and sets the session cookie for a freshly
// established session.
func IssueSessionCookie(c echo.Context, sess *domain.Session, secret string, ttl time.Duration) error {
	claims := jwt.MapClaims{
		"sid":  sess.ID,
		"role": string(sess.Identity.Kind),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
	return nil
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// sessionIDFromCookie verifies the cookie JWT and extracts the session id.
func sessionIDFromCookie(c echo.Context, secret string) string {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return ""
	}

	sid, _ := claims["sid"].(string)
	return sid
}
