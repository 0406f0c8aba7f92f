package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/core/domain"
	"github.com/playvault/client-gateway/internal/routes"
)

func adminSession() *domain.Session {
	return &domain.Session{
		ID:        "sid-admin",
		Identity:  domain.Identity{Kind: domain.IdentityAdmin, ID: "a_1", Username: "root"},
		Token:     "admin-token",
		TokenKind: domain.TokenBearer,
	}
}

func clientSession() *domain.Session {
	return &domain.Session{
		ID:        "sid-client",
		Identity:  domain.Identity{Kind: domain.IdentityClient, ID: "c_1", Username: "alice"},
		Token:     "portal-token",
		TokenKind: domain.TokenPortal,
	}
}

func loadingSession() *domain.Session {
	return &domain.Session{ID: "sid-loading", Identity: domain.Anonymous, Loading: true}
}

// runGuard sends a request through mw with sess pre-set in the context and
// reports whether the inner handler ran.
func runGuard(t *testing.T, mw echo.MiddlewareFunc, sess *domain.Session, target string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetSession(c, sess)

	rendered := false
	handler := mw(func(c echo.Context) error {
		rendered = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("guard returned error: %v", err)
	}
	return rec, rendered
}

func TestAdminGuard_RendersOnlyForAdmin(t *testing.T) {
	rec, rendered := runGuard(t, AdminGuard(), adminSession(), routes.AdminDashboard)
	if !rendered || rec.Code != http.StatusOK {
		t.Fatalf("admin should render, got %d rendered=%v", rec.Code, rendered)
	}

	for _, sess := range []*domain.Session{clientSession(), domain.AnonymousSession()} {
		rec, rendered := runGuard(t, AdminGuard(), sess, routes.AdminDashboard)
		if rendered {
			t.Fatalf("non-admin %s must not render", sess.Identity.Kind)
		}
		if rec.Code != http.StatusFound {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != routes.AdminLogin {
			t.Fatalf("expected redirect to %s, got %s", routes.AdminLogin, loc)
		}
	}
}

func TestClientGuard_AnonymousRedirectsToLoginWithNext(t *testing.T) {
	rec, rendered := runGuard(t, ClientGuard(), domain.AnonymousSession(), routes.ClientWallet)
	if rendered {
		t.Fatalf("anonymous visitor must not render")
	}
	want := routes.LoginWithNext(routes.ClientWallet)
	if loc := rec.Header().Get("Location"); loc != want {
		t.Fatalf("expected redirect to %s, got %s", want, loc)
	}
}

func TestClientGuard_RendersForAuthenticated(t *testing.T) {
	for _, sess := range []*domain.Session{clientSession(), adminSession()} {
		_, rendered := runGuard(t, ClientGuard(), sess, routes.ClientWallet)
		if !rendered {
			t.Fatalf("%s identity should render client routes", sess.Identity.Kind)
		}
	}
}

func TestGuestGuard_RedirectTargetDiffersByRole(t *testing.T) {
	rec, rendered := runGuard(t, GuestGuard(), adminSession(), routes.Login)
	if rendered {
		t.Fatalf("authenticated admin must not render guest routes")
	}
	if loc := rec.Header().Get("Location"); loc != routes.AdminDashboard {
		t.Fatalf("admin redirect = %s, want %s", loc, routes.AdminDashboard)
	}

	rec, rendered = runGuard(t, GuestGuard(), clientSession(), routes.Login)
	if rendered {
		t.Fatalf("authenticated client must not render guest routes")
	}
	if loc := rec.Header().Get("Location"); loc != routes.ClientHome {
		t.Fatalf("client redirect = %s, want %s", loc, routes.ClientHome)
	}

	_, rendered = runGuard(t, GuestGuard(), domain.AnonymousSession(), routes.Login)
	if !rendered {
		t.Fatalf("anonymous visitor should render guest routes")
	}
}

func TestGuards_LoadingShowsPlaceholderNeverRedirects(t *testing.T) {
	for name, mw := range map[string]echo.MiddlewareFunc{
		"admin":  AdminGuard(),
		"client": ClientGuard(),
		"guest":  GuestGuard(),
	} {
		rec, rendered := runGuard(t, mw, loadingSession(), "/somewhere")
		if rendered {
			t.Fatalf("%s guard rendered while loading", name)
		}
		if rec.Code != http.StatusAccepted {
			t.Fatalf("%s guard: expected 202 placeholder, got %d", name, rec.Code)
		}
		if rec.Header().Get("Location") != "" {
			t.Fatalf("%s guard redirected while loading", name)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Fatalf("%s guard placeholder missing retry hint", name)
		}
	}
}
