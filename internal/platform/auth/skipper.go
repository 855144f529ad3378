package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication: infrastructure
// endpoints, credential endpoints, and the stateless prediction endpoint.
var publicPaths = map[string]bool{
	"/health":           true,
	"/health/db":        true,
	"/v1/auth/register": true,
	"/v1/auth/login":    true,
	"/v1/risk/predict":  true,
}

// AuthSkipper returns true for requests whose path should skip authentication.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path bypasses auth middleware.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
