package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/api/metrics"
	"github.com/playvault/client-gateway/internal/core/ports"
	"github.com/playvault/client-gateway/internal/routes"
)

// LegacyRedirect keeps old bookmarked /portal and /client-login URLs alive by
// redirecting them to their canonical equivalents. It must be registered with
// echo.Pre so it runs before router matching: an unmatched legacy path
// redirects, it never 404s.
//
// The magic-link prefix /p/ is not legacy and passes straight through to the
// route tree regardless of session state.
func LegacyRedirect(svc ports.SessionService, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if !routes.IsLegacy(path) {
				return next(c)
			}

			sess := ResolveSession(c, svc, secret)
			SetSession(c, sess)

			// A pending session check suppresses the anonymous-to-login
			// override; hold the decision instead of guessing.
			if sess.Loading && path != routes.LegacyClientLogin {
				return RenderPending(c)
			}

			target, ok := routes.Resolve(path, sess.Identity)
			if !ok {
				return next(c)
			}

			rule := "portal"
			if path == routes.LegacyClientLogin {
				rule = "client_login"
			}
			metrics.LegacyRedirectsTotal.WithLabelValues(rule).Inc()

			// 302, not 301: the target depends on session state, so the
			// browser must not cache the mapping.
			return c.Redirect(http.StatusFound, target)
		}
	}
}
