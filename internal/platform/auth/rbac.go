package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HasRole reports whether the session holds one of roles. Admin holds every
// role.
func HasRole(s *Session, roles ...Role) bool {
	if s == nil {
		return false
	}
	if s.Role == RoleAdmin {
		return true
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// RequireRole runs before the handler so a denied request never reaches a
// query. Denied callers are redirected to deniedPath with 303, or get 403
// when deniedPath is empty. Missing sessions get 401.
func RequireRole(deniedPath string, roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := SessionFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}
			if HasRole(s, roles...) {
				return next(c)
			}
			if deniedPath != "" {
				return c.Redirect(http.StatusSeeOther, deniedPath)
			}
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
	}
}
