package webui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/netopsdesk/siteportal/internal/domain"
	"github.com/netopsdesk/siteportal/internal/webserver"
)

func registerUserRoutes() {
	adminOnly := webserver.RequireRoles(domain.RoleAdmin)

	webserver.GET("/admin", adminPage, adminOnly)
	webserver.POST("/admin", createUser, adminOnly)
	webserver.GET("/admin/edit/:id", editUserPage, adminOnly)
	webserver.POST("/admin/edit/:id", editUser, adminOnly)
	webserver.POST("/admin/delete/:id", deleteUser, adminOnly)
}

type userForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"omitempty,min=6"`
	Role     string `form:"role" validate:"required"`
}

func (f *userForm) trim() {
	f.Username = strings.TrimSpace(f.Username)
}

func validRole(role string) bool {
	for _, r := range domain.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func renderAdminPage(c echo.Context, form *userForm, errs map[string]string, action string, editUser *domain.SysUser) error {
	users, err := webserver.GetRepos(c).Users.List(c.Request().Context())
	if err != nil {
		zap.L().Error("user list failed", zap.Error(err))
		return err
	}
	if errs == nil {
		errs = map[string]string{}
	}
	return render(c, "admin.html", echo.Map{
		"Users":    users,
		"Form":     form,
		"Errors":   errs,
		"Action":   action,
		"EditUser": editUser,
		"Roles":    domain.Roles,
	})
}

func adminPage(c echo.Context) error {
	return renderAdminPage(c, &userForm{}, nil, "/admin", nil)
}

func createUser(c echo.Context) error {
	form := new(userForm)
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse user form")
	}
	form.trim()

	errs := map[string]string{}
	if err := c.Validate(form); err != nil {
		errs = fieldErrors(err)
	}
	if form.Password == "" {
		errs["password"] = "This field is required."
	}
	if form.Role != "" && !validRole(form.Role) {
		errs["role"] = "Invalid choice."
	}

	repos := webserver.GetRepos(c)
	ctx := c.Request().Context()
	if form.Username != "" {
		if _, err := repos.Users.GetByUsername(ctx, form.Username); err == nil {
			errs["username"] = "Username already exists."
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if len(errs) > 0 {
		return renderAdminPage(c, form, errs, "/admin", nil)
	}

	user := &domain.SysUser{Username: form.Username, Role: form.Role}
	if err := user.SetPassword(form.Password); err != nil {
		zap.L().Error("password hash failed", zap.Error(err))
		webserver.Flash(c, "danger", "An error occurred while updating the password.")
		return renderAdminPage(c, form, nil, "/admin", nil)
	}
	if err := repos.Users.Create(ctx, user); err != nil {
		zap.L().Error("user create failed", zap.Error(err))
		webserver.Flash(c, "danger", "Failed to save the user.")
		return renderAdminPage(c, form, nil, "/admin", nil)
	}
	return redirectWithFlash(c, "success", "User created successfully", "/admin")
}

func loadUser(c echo.Context) (*domain.SysUser, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	user, err := webserver.GetRepos(c).Users.GetByID(c.Request().Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

func editUserPage(c echo.Context) error {
	user, err := loadUser(c)
	if err != nil {
		return err
	}
	// Password left blank: an empty submission keeps the current hash.
	form := &userForm{Username: user.Username, Role: user.Role}
	action := fmt.Sprintf("/admin/edit/%d", user.ID)
	return renderAdminPage(c, form, nil, action, user)
}

func editUser(c echo.Context) error {
	user, err := loadUser(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("/admin/edit/%d", user.ID)

	form := new(userForm)
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse user form")
	}
	form.trim()

	errs := map[string]string{}
	if err := c.Validate(form); err != nil {
		errs = fieldErrors(err)
	}
	if form.Role != "" && !validRole(form.Role) {
		errs["role"] = "Invalid choice."
	}

	repos := webserver.GetRepos(c)
	ctx := c.Request().Context()
	if form.Username != "" && form.Username != user.Username {
		if _, err := repos.Users.GetByUsername(ctx, form.Username); err == nil {
			errs["username"] = "Username already exists."
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if len(errs) > 0 {
		return renderAdminPage(c, form, errs, action, user)
	}

	user.Username = form.Username
	user.Role = form.Role
	if form.Password != "" {
		if err := user.SetPassword(form.Password); err != nil {
			zap.L().Error("password hash failed", zap.Int64("id", user.ID), zap.Error(err))
			webserver.Flash(c, "danger", "An error occurred while updating the password.")
			return renderAdminPage(c, form, nil, action, user)
		}
	}

	if err := repos.Users.Update(ctx, user); err != nil {
		zap.L().Error("user update failed", zap.Int64("id", user.ID), zap.Error(err))
		webserver.Flash(c, "danger", "Failed to save the user.")
		return renderAdminPage(c, form, nil, action, user)
	}
	return redirectWithFlash(c, "success", "User updated successfully", "/admin")
}

func deleteUser(c echo.Context) error {
	user, err := loadUser(c)
	if err != nil {
		return err
	}

	identity := webserver.CurrentIdentity(c)
	if identity != nil && identity.ID == user.ID {
		return redirectWithFlash(c, "danger", "You cannot delete your own account.", "/admin")
	}

	repos := webserver.GetRepos(c)
	ctx := c.Request().Context()
	if user.Role == domain.RoleAdmin {
		count, err := repos.Users.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if count <= 1 {
			return redirectWithFlash(c, "danger", "Cannot delete the last remaining admin account.", "/admin")
		}
	}

	if err := repos.Users.Delete(ctx, user.ID); err != nil {
		zap.L().Error("user delete failed", zap.Int64("id", user.ID), zap.Error(err))
		return redirectWithFlash(c, "danger", "Failed to delete the user.", "/admin")
	}
	return redirectWithFlash(c, "info", "User deleted", "/admin")
}
