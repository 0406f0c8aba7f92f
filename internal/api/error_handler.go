package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/playvault/client-gateway/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Fields
// carries per-field validation messages; Retryable marks transient failures
// the caller should re-issue rather than treat as terminal.
type errorResponse struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the domain error taxonomy to deterministic HTTP status codes.
//   - Marks transient failures retryable so the UI can offer a retry control.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if body.Retryable {
			c.Response().Header().Set("Retry-After", "2")
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: ve.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrTokenInvalidOrExpired):
		return http.StatusUnauthorized, errorResponse{Error: "token invalid or expired"}
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: "platform unavailable, try again", Retryable: true}
	case errors.Is(err, domain.ErrSessionSuperseded):
		return http.StatusConflict, errorResponse{Error: "session was cleared during login"}
	case errors.Is(err, domain.ErrMalformedAuthReply):
		return http.StatusBadGateway, errorResponse{Error: "platform returned an invalid login reply"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	}

	// Platform failures relay the upstream status and its detail message
	// verbatim as the fallback text.
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		msg := ue.Detail
		if msg == "" {
			msg = "something went wrong"
		}
		if ue.Status >= 500 {
			log.Error().Int("upstream_status", ue.Status).Str("detail", ue.Detail).
				Str("path", c.Path()).Msg("upstream server error")
			return http.StatusBadGateway, errorResponse{Error: msg}
		}
		return ue.Status, errorResponse{Error: msg}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
