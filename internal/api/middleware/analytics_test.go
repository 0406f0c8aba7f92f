package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/core/domain"
	"github.com/playvault/client-gateway/internal/core/ports"
)

type recordingSink struct {
	events []ports.PageView
}

func (s *recordingSink) Enqueue(pv ports.PageView) {
	s.events = append(s.events, pv)
}

func runAnalytics(t *testing.T, sink *recordingSink, sess *domain.Session, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/client/wallet", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetSession(c, sess)

	if err := Analytics(sink)(h)(c); err != nil && !c.Response().Committed {
		t.Fatalf("middleware left error unhandled: %v", err)
	}
	return rec
}

func TestAnalytics_RecordsSessionAndStatus(t *testing.T) {
	sink := &recordingSink{}
	sess := clientSession()

	runAnalytics(t, sink, sess, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if len(sink.events) != 1 {
		t.Fatalf("expected one event, got %d", len(sink.events))
	}
	pv := sink.events[0]
	if pv.SessionID != sess.ID || pv.Identity != domain.IdentityClient {
		t.Fatalf("unexpected event identity: %+v", pv)
	}
	if pv.Path != "/client/wallet" || pv.Status != http.StatusOK {
		t.Fatalf("unexpected event: %+v", pv)
	}
}

func TestAnalytics_FailedRequestCarriesMappedStatus(t *testing.T) {
	sink := &recordingSink{}

	rec := runAnalytics(t, sink, domain.AnonymousSession(), func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session credential")
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("response status = %d, want 401", rec.Code)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected one event, got %d", len(sink.events))
	}
	if sink.events[0].Status != http.StatusUnauthorized {
		t.Fatalf("recorded status = %d, want the mapped 401", sink.events[0].Status)
	}
}

func TestAnalytics_RedirectRecordsRedirectStatus(t *testing.T) {
	sink := &recordingSink{}

	runAnalytics(t, sink, clientSession(), func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/client")
	})

	if len(sink.events) != 1 || sink.events[0].Status != http.StatusFound {
		t.Fatalf("expected one 302 event, got %+v", sink.events)
	}
}
