package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// SessionHeader lets API clients pin their session explicitly.
	SessionHeader = "X-Session-ID"
	// SessionCookie carries the session ID for browser viewers.
	SessionCookie = "ifc_sid"

	sessionContextKey = "session_id"
)

// Session resolves the viewer's session ID: the X-Session-ID header wins,
// then the cookie, and a brand-new ID is minted (and set as a cookie) when
// neither is present. Every request downstream can rely on SessionID(c).
func Session() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := c.Request().Header.Get(SessionHeader)
			if sid == "" {
				if cookie, err := c.Cookie(SessionCookie); err == nil {
					sid = cookie.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     SessionCookie,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(sessionContextKey, sid)
			return next(c)
		}
	}
}

// SessionID returns the session ID resolved by Session.
func SessionID(c echo.Context) string {
	sid, _ := c.Get(sessionContextKey).(string)
	return sid
}
