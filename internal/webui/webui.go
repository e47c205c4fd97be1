// Package webui registers the server-rendered portal pages.
package webui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/netopsdesk/siteportal/internal/webserver"
)

// InitRouter registers all portal routes on the web server.
func InitRouter() {
	registerAuthRoutes()
	registerSiteRoutes()
	registerReportRoutes()
	registerUserRoutes()
	registerExportRoutes()
}

// render executes a page template with the identity and pending notices
// attached.
func render(c echo.Context, name string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	data["Identity"] = webserver.CurrentIdentity(c)
	data["Notices"] = webserver.TakeFlashes(c)
	return c.Render(http.StatusOK, name, data)
}

func redirectWithFlash(c echo.Context, level, message, target string) error {
	webserver.Flash(c, level, message)
	return c.Redirect(http.StatusFound, target)
}

// parseIDParam treats a malformed id segment the same as an unknown record.
func parseIDParam(c echo.Context, name string) (int64, error) {
	id := cast.ToInt64(c.Param(name))
	if id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Not Found")
	}
	return id, nil
}

// fieldErrors maps validator failures to per-field messages keyed by form
// field name.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return out
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "This field is required."
		case "ip":
			out[fe.Field()] = "Invalid IP address."
		case "oneof":
			out[fe.Field()] = "Invalid choice."
		case "min":
			out[fe.Field()] = fmt.Sprintf("Must be at least %s characters long.", fe.Param())
		default:
			out[fe.Field()] = "Invalid value."
		}
	}
	return out
}

// parseDateField accepts the browser's date input format plus the common
// variants dateparse understands, truncated to the day.
func parseDateField(v string) (time.Time, bool) {
	t, err := dateparse.ParseAny(strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
