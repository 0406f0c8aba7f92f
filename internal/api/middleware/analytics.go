package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/core/ports"
)

// PageViewSink receives navigation events. Satisfied by the queue dispatcher.
type PageViewSink interface {
	Enqueue(pv ports.PageView)
}

// Analytics records a page view for every completed request. Recording is
// fire-and-forget: it cannot fail the request, and a full pipeline drops
// events silently.
//
// A returned error is handed to the error handler here, before the event is
// built, so the recorded status is the mapped one and not the default 200.
// The outer handler sees a committed response and does nothing further.
func Analytics(sink PageViewSink) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			sess := SessionFrom(c)
			sink.Enqueue(ports.PageView{
				ID:        uuid.NewString(),
				SessionID: sess.ID,
				Identity:  sess.Identity.Kind,
				Path:      c.Request().URL.Path,
				Status:    c.Response().Status,
				At:        time.Now().UTC(),
			})

			return err
		}
	}
}
