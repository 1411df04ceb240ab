package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runSession(t *testing.T, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var sid string
	handler := Session()(func(c echo.Context) error {
		sid = SessionID(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return sid, rec
}

func TestSession_HeaderWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "header-sid")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-sid"})

	sid, _ := runSession(t, req)
	if sid != "header-sid" {
		t.Fatalf("sid = %q", sid)
	}
}

func TestSession_CookieFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-sid"})

	sid, _ := runSession(t, req)
	if sid != "cookie-sid" {
		t.Fatalf("sid = %q", sid)
	}
}

func TestSession_MintsAndSetsCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sid, rec := runSession(t, req)
	if sid == "" {
		t.Fatalf("expected a minted session id")
	}

	res := rec.Result()
	defer res.Body.Close()
	cookies := res.Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].Value != sid {
		t.Fatalf("cookie = %+v", cookies)
	}
}
