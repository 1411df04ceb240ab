package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/ports"
)

// Guard protects a role's routes. An unauthenticated viewer is sent to the
// public landing page; an authenticated viewer of a different role is sent
// to that role's own landing route. A transient verification failure keeps
// the viewer signed in on the cached profile.
func Guard(requiredRole string, auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := SessionID(c)
			v := auth.Verify(c.Request().Context(), sid)

			switch v.State {
			case ports.Anonymous, ports.Unauthorized:
				return c.Redirect(http.StatusSeeOther, "/")
			}
			if v.User == nil {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			if v.User.Role != requiredRole {
				return c.Redirect(http.StatusSeeOther, domain.DefaultRoute(v.User.Role))
			}
			return next(c)
		}
	}
}
