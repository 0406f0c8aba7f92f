package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/api/metrics"
	"github.com/playvault/client-gateway/internal/core/domain"
	"github.com/playvault/client-gateway/internal/routes"
)

// Guards gate the three route trees on the resolved session. Each request
// passes through exactly one decision: pending (session state not yet
// settled), redirect, or render. Pending always wins over redirect so a slow
// session check can never bounce a possibly-valid visitor to login.

type guardDecision int

const (
	decisionPending guardDecision = iota
	decisionRedirect
	decisionRender
)

// AdminGuard renders only for admin identities; everyone else is sent to the
// admin login page.
func AdminGuard() echo.MiddlewareFunc {
	return guard("admin", func(sess *domain.Session, _ string) (guardDecision, string) {
		if sess.Loading {
			return decisionPending, ""
		}
		if !sess.Identity.IsAdmin() {
			return decisionRedirect, routes.AdminLogin
		}
		return decisionRender, ""
	})
}

// ClientGuard renders for any authenticated identity with a client role; an
// anonymous visitor is sent to login with the attempted location preserved so
// login can forward them back.
func ClientGuard() echo.MiddlewareFunc {
	return guard("client", func(sess *domain.Session, requested string) (guardDecision, string) {
		if sess.Loading {
			return decisionPending, ""
		}
		if sess.Identity.IsNone() {
			return decisionRedirect, routes.LoginWithNext(requested)
		}
		return decisionRender, ""
	})
}

// GuestGuard renders only for anonymous visitors; an authenticated identity
// is sent to its home (admin dashboard or client home, by role).
func GuestGuard() echo.MiddlewareFunc {
	return guard("guest", func(sess *domain.Session, _ string) (guardDecision, string) {
		if sess.Loading {
			return decisionPending, ""
		}
		if !sess.Identity.IsNone() {
			return decisionRedirect, routes.HomeFor(sess.Identity)
		}
		return decisionRender, ""
	})
}

func guard(name string, decide func(sess *domain.Session, requested string) (guardDecision, string)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			decision, target := decide(sess, c.Request().URL.RequestURI())

			switch decision {
			case decisionPending:
				metrics.GuardDecisionsTotal.WithLabelValues(name, "pending").Inc()
				return RenderPending(c)
			case decisionRedirect:
				metrics.GuardDecisionsTotal.WithLabelValues(name, "redirect").Inc()
				return c.Redirect(http.StatusFound, target)
			default:
				metrics.GuardDecisionsTotal.WithLabelValues(name, "render").Inc()
				return next(c)
			}
		}
	}
}

// RenderPending is the lightweight placeholder served while the session state
// is still being established. It is a 202 with a retry hint, never a redirect
// and never a blank error page.
func RenderPending(c echo.Context) error {
	c.Response().Header().Set("Retry-After", "1")
	return c.JSON(http.StatusAccepted, map[string]string{"status": "pending"})
}
