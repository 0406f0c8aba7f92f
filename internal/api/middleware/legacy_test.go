package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/core/domain"
	"github.com/playvault/client-gateway/internal/core/ports"
	"github.com/playvault/client-gateway/internal/routes"
)

// stubSessionService resolves every id to a fixed session.
type stubSessionService struct {
	session *domain.Session
}

func (s *stubSessionService) Login(context.Context, string, string) (*domain.Session, error) {
	panic("not used")
}
func (s *stubSessionService) ClientLogin(context.Context, string, string) (*domain.Session, error) {
	panic("not used")
}
func (s *stubSessionService) Signup(context.Context, ports.SignupInput) (*domain.Session, error) {
	panic("not used")
}
func (s *stubSessionService) ValidateMagicToken(context.Context, string) (*domain.Session, error) {
	panic("not used")
}
func (s *stubSessionService) Logout(context.Context, string) error { return nil }

func (s *stubSessionService) Resolve(context.Context, string) (*domain.Session, error) {
	return s.session, nil
}

func runLegacy(t *testing.T, sess *domain.Session, target string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	// Pre-set the session: the resolver reuses a resolved session instead of
	// reading the cookie again.
	SetSession(c, sess)

	passedThrough := false
	handler := LegacyRedirect(&stubSessionService{session: sess}, "secret")(func(c echo.Context) error {
		passedThrough = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, passedThrough
}

func TestLegacyRedirect_PortalAnonymous(t *testing.T) {
	rec, passed := runLegacy(t, domain.AnonymousSession(), "/portal/wallet")
	if passed {
		t.Fatalf("legacy path must not reach the router")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	want := routes.LoginWithNext("/portal/wallet")
	if loc := rec.Header().Get("Location"); loc != want {
		t.Fatalf("Location = %s, want %s", loc, want)
	}
}

func TestLegacyRedirect_PortalWalletAuthenticatedClient(t *testing.T) {
	rec, passed := runLegacy(t, clientSession(), "/portal/wallet")
	if passed {
		t.Fatalf("legacy path must not reach the router")
	}
	if loc := rec.Header().Get("Location"); loc != routes.ClientWallet {
		t.Fatalf("Location = %s, want %s", loc, routes.ClientWallet)
	}
}

func TestLegacyRedirect_UnknownPortalPathNever404s(t *testing.T) {
	rec, passed := runLegacy(t, clientSession(), "/portal/deeply/nested/forgotten-page")
	if passed {
		t.Fatalf("unknown legacy path must not fall through to 404 handling")
	}
	if loc := rec.Header().Get("Location"); loc != routes.ClientHome {
		t.Fatalf("Location = %s, want fallback %s", loc, routes.ClientHome)
	}
}

func TestLegacyRedirect_ClientLoginIgnoresSession(t *testing.T) {
	for _, sess := range []*domain.Session{domain.AnonymousSession(), clientSession(), adminSession()} {
		rec, passed := runLegacy(t, sess, routes.LegacyClientLogin)
		if passed {
			t.Fatalf("/client-login must always redirect")
		}
		if loc := rec.Header().Get("Location"); loc != routes.Login {
			t.Fatalf("Location = %s, want %s", loc, routes.Login)
		}
	}
}

func TestLegacyRedirect_MagicLinkPassesThrough(t *testing.T) {
	for _, sess := range []*domain.Session{domain.AnonymousSession(), clientSession(), adminSession()} {
		rec, passed := runLegacy(t, sess, "/p/abc123")
		if !passed {
			t.Fatalf("magic-link landing must never be intercepted (session %s)", sess.Identity.Kind)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected inner handler response, got %d", rec.Code)
		}
	}
}

func TestLegacyRedirect_NonLegacyPassesThrough(t *testing.T) {
	for _, target := range []string{"/", "/login", "/client/wallet", "/admin"} {
		_, passed := runLegacy(t, domain.AnonymousSession(), target)
		if !passed {
			t.Fatalf("%s must pass through untouched", target)
		}
	}
}

func TestLegacyRedirect_LoadingHoldsDecision(t *testing.T) {
	rec, passed := runLegacy(t, loadingSession(), "/portal/wallet")
	if passed {
		t.Fatalf("loading session must not fall through")
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 placeholder while loading, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "" {
		t.Fatalf("must not redirect while session state is pending")
	}
}
