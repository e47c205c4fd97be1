package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Decision is the outcome of an access check.
type Decision int

const (
	Allowed Decision = iota
	DeniedAnonymous
	DeniedRole
)

// Authorize decides whether an identity may perform an operation gated by the
// given roles. An empty role set only requires authentication.
func Authorize(id *Identity, required []string) Decision {
	if id == nil {
		return DeniedAnonymous
	}
	if len(required) == 0 {
		return Allowed
	}
	for _, role := range required {
		if id.Role == role {
			return Allowed
		}
	}
	return DeniedRole
}

// RequireAuth only demands an authenticated caller.
func RequireAuth() echo.MiddlewareFunc {
	return RequireRoles()
}

// RequireRoles guards a route: anonymous callers are sent to the login page
// with a warning, authenticated callers outside the role set are sent back to
// the site listing with a denial notice.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch Authorize(CurrentIdentity(c), roles) {
			case DeniedAnonymous:
				Flash(c, "warning", "Please log in to access this page.")
				return c.Redirect(http.StatusFound, "/login")
			case DeniedRole:
				Flash(c, "danger", "Access Denied: You do not have permission.")
				return c.Redirect(http.StatusFound, "/site_data")
			}
			return next(c)
		}
	}
}
