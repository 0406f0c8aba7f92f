package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/api/metrics"
	"github.com/playvault/client-gateway/internal/api/middleware"
	"github.com/playvault/client-gateway/internal/core/domain"
	"github.com/playvault/client-gateway/internal/core/ports"
	"github.com/playvault/client-gateway/internal/routes"
)

// AuthHandler owns the credential exchange endpoints and the magic-link
// landing route.
type AuthHandler struct {
	sessions     ports.SessionService
	cookieSecret string
	sessionTTL   time.Duration
}

func NewAuthHandler(sessions ports.SessionService, cookieSecret string, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookieSecret: cookieSecret, sessionTTL: sessionTTL}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	// Next is the location the visitor originally asked for, carried through
	// the login form so a successful login can forward them back.
	Next string `json:"next,omitempty"`
}

type registerRequest struct {
	Username     string `json:"username" validate:"required,min=3"`
	Password     string `json:"password" validate:"required,min=8"`
	DisplayName  string `json:"display_name,omitempty"`
	ReferredCode string `json:"referred_by,omitempty"`
}

type authResponse struct {
	Identity   domain.Identity `json:"identity"`
	RedirectTo string          `json:"redirect_to"`
}

type sessionResponse struct {
	Identity domain.Identity `json:"identity"`
	Loading  bool            `json:"loading,omitempty"`
}

type viewResponse struct {
	View   string `json:"view"`
	Submit string `json:"submit"`
	Next   string `json:"next,omitempty"`
}

// View serves the descriptor for an auth form page (login, register, admin
// login): the view name, where the form posts, and the preserved next
// location. Guard redirects point at these paths, so they must always render
// for a guest.
func (h *AuthHandler) View(name, submit string) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := viewResponse{View: name, Submit: submit}
		if next := c.QueryParam("next"); safeRelativePath(next) {
			resp.Next = next
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// AdminLogin handles POST /admin/login.
//
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Admin credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /admin/login [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sess, err := h.sessions.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("login", outcomeOf(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("login", "success").Inc()

	return h.establish(c, sess, req.Next)
}

// ClientLogin handles POST /login, the client credential path.
//
// @Summary      Client login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Client credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) ClientLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sess, err := h.sessions.ClientLogin(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("client_login", outcomeOf(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("client_login", "success").Inc()

	return h.establish(c, sess, req.Next)
}

// Register handles POST /register.
//
// @Summary      Register a new client
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      422   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sess, err := h.sessions.Signup(c.Request().Context(), ports.SignupInput{
		Username:     req.Username,
		Password:     req.Password,
		DisplayName:  req.DisplayName,
		ReferredCode: req.ReferredCode,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("signup", outcomeOf(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("signup", "success").Inc()

	if err := middleware.IssueSessionCookie(c, sess, h.cookieSecret, h.sessionTTL); err != nil {
		return err
	}
	middleware.SetSession(c, sess)

	return c.JSON(http.StatusCreated, authResponse{
		Identity:   sess.Identity,
		RedirectTo: routes.HomeFor(sess.Identity),
	})
}

type magicLinkErrorResponse struct {
	Error     string `json:"error"`
	Action    string `json:"action"` // "login" (terminal) or "retry" (transient)
	LoginURL  string `json:"login_url,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// MagicLink handles GET /p/:token, the one path that must never change. A
// valid token logs the client in and forwards to client home; a dead token
// offers "go to login" and a transport failure offers "retry" — the two are
// never conflated.
//
// @Summary      Magic-link landing
// @Tags         auth
// @Produce      json
// @Param        token  path  string  true  "Magic-link token"
// @Success      302
// @Failure      401   {object}  magicLinkErrorResponse
// @Failure      503   {object}  magicLinkErrorResponse
// @Router       /p/{token} [get]
func (h *AuthHandler) MagicLink(c echo.Context) error {
	token := c.Param("token")

	sess, err := h.sessions.ValidateMagicToken(c.Request().Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenInvalidOrExpired):
			metrics.LoginsTotal.WithLabelValues("magic_link", "token_expired").Inc()
			return c.JSON(http.StatusUnauthorized, magicLinkErrorResponse{
				Error:    "this link is no longer valid",
				Action:   "login",
				LoginURL: routes.Login,
			})
		case domain.Retryable(err):
			metrics.LoginsTotal.WithLabelValues("magic_link", "network_unavailable").Inc()
			c.Response().Header().Set("Retry-After", "2")
			return c.JSON(http.StatusServiceUnavailable, magicLinkErrorResponse{
				Error:     "could not reach the platform, try again",
				Action:    "retry",
				Retryable: true,
			})
		}
		metrics.LoginsTotal.WithLabelValues("magic_link", "error").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("magic_link", "success").Inc()

	if err := middleware.IssueSessionCookie(c, sess, h.cookieSecret, h.sessionTTL); err != nil {
		return err
	}
	middleware.SetSession(c, sess)

	return c.Redirect(http.StatusFound, routes.ClientHome)
}

// Logout handles POST /logout. Always succeeds, twice in a row included.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if err := h.sessions.Logout(c.Request().Context(), sess.ID); err != nil {
		return err
	}

	middleware.ClearSessionCookie(c)
	middleware.SetSession(c, domain.AnonymousSession())

	return c.NoContent(http.StatusNoContent)
}

// Current handles GET /session, the initial session check the client shell
// performs at startup.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *AuthHandler) Current(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	return c.JSON(http.StatusOK, sessionResponse{
		Identity: sess.Identity,
		Loading:  sess.Loading,
	})
}

// establish sets the session cookie and answers with the post-login redirect
// target: the preserved original location when safe, the identity's home
// otherwise.
func (h *AuthHandler) establish(c echo.Context, sess *domain.Session, next string) error {
	if err := middleware.IssueSessionCookie(c, sess, h.cookieSecret, h.sessionTTL); err != nil {
		return err
	}
	middleware.SetSession(c, sess)

	target := routes.HomeFor(sess.Identity)
	if safeRelativePath(next) {
		target = next
	}
	return c.JSON(http.StatusOK, authResponse{Identity: sess.Identity, RedirectTo: target})
}

// safeRelativePath accepts only same-origin absolute paths, rejecting
// protocol-relative and external targets.
func safeRelativePath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//")
}

// outcomeOf labels an auth failure for metrics.
func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTokenInvalidOrExpired):
		return "token_expired"
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return "network_unavailable"
	case errors.Is(err, domain.ErrSessionSuperseded):
		return "superseded"
	default:
		return "error"
	}
}
