package webui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/netopsdesk/siteportal/internal/webserver"
)

func registerAuthRoutes() {
	webserver.GET("/login", loginPage)
	webserver.POST("/login", login)
	webserver.GET("/logout", logout, webserver.RequireAuth())
}

func loginPage(c echo.Context) error {
	if webserver.CurrentIdentity(c) != nil {
		return c.Redirect(http.StatusFound, "/site_data")
	}
	return render(c, "login.html", nil)
}

func login(c echo.Context) error {
	if webserver.CurrentIdentity(c) != nil {
		return c.Redirect(http.StatusFound, "/site_data")
	}

	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	user, err := webserver.GetRepos(c).Users.GetByUsername(c.Request().Context(), username)
	switch {
	case err == nil && user.CheckPassword(password):
		if err := webserver.EstablishIdentity(c, user); err != nil {
			return err
		}
		webserver.Flash(c, "success", fmt.Sprintf("Welcome back, %s!", user.Username))
		return c.Redirect(http.StatusFound, "/site_data")
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		zap.L().Error("login lookup failed", zap.Error(err))
	}

	// Same message for unknown user and wrong password.
	webserver.Flash(c, "danger", "Invalid username or password")
	return render(c, "login.html", nil)
}

func logout(c echo.Context) error {
	if err := webserver.ClearIdentity(c); err != nil {
		return err
	}
	webserver.Flash(c, "info", "You have been logged out")
	return c.Redirect(http.StatusFound, "/login")
}
