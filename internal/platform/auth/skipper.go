package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths are routes served without a session.
var publicPaths = map[string]bool{
	"/health":    true,
	"/health/db": true,
	"/login":     true,
	"/logout":    true,
}

// AuthSkipper reports whether the matched route is public. Pass it to
// SessionManager.Middleware or DevAuthMiddleware.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

func IsPublicPath(path string) bool {
	return publicPaths[path]
}
