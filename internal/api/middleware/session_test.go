package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/playvault/client-gateway/internal/core/domain"
)

const testSecret = "test-secret"

func issueCookie(t *testing.T, sess *domain.Session) *http.Cookie {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := IssueSessionCookie(c, sess, testSecret, time.Hour); err != nil {
		t.Fatalf("issue cookie: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie {
		t.Fatalf("expected one session cookie, got %v", cookies)
	}
	return cookies[0]
}

func TestSession_CookieRoundTrip(t *testing.T) {
	sess := clientSession()
	cookie := issueCookie(t, sess)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/client", nil)
	req.AddCookie(cookie)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Session(&stubSessionService{session: sess}, testSecret)(func(c echo.Context) error {
		got := SessionFrom(c)
		if got.ID != sess.ID || !got.Identity.IsClient() {
			t.Fatalf("unexpected session in context: %+v", got)
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
}

func TestSession_MissingCookieIsAnonymous(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	handler := Session(&stubSessionService{session: clientSession()}, testSecret)(func(c echo.Context) error {
		if SessionFrom(c).Authenticated() {
			t.Fatalf("missing cookie must resolve to the anonymous session")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
}

func TestSession_TamperedCookieIsAnonymous(t *testing.T) {
	cookie := issueCookie(t, clientSession())
	cookie.Value += "x"

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Session(&stubSessionService{session: clientSession()}, testSecret)(func(c echo.Context) error {
		if SessionFrom(c).Authenticated() {
			t.Fatalf("tampered cookie must resolve to the anonymous session")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
}

func TestClearSessionCookie(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ClearSessionCookie(c)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
		t.Fatalf("expected expired empty cookie, got %v", cookies)
	}
}
