package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/api/middleware"
	"github.com/playvault/client-gateway/internal/core/ports"
)

// ctxCredential extracts the upstream credential from the request session.
// The guards have already admitted the request, so a missing token means the
// session invariant was broken somewhere; fail closed with a 401.
func ctxCredential(c echo.Context) (ports.Credential, error) {
	sess := middleware.SessionFrom(c)
	if !sess.Authenticated() || sess.Token == "" {
		return ports.Credential{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session credential")
	}
	return ports.Credential{Token: sess.Token, Kind: sess.TokenKind}, nil
}
