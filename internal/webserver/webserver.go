package webserver

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"

	"github.com/netopsdesk/siteportal/internal/app"
	"github.com/netopsdesk/siteportal/internal/repository"
)

//go:embed templates/*.html
var templatesFS embed.FS

const reposContextKey = "siteportal_repos"

type WebServer struct {
	root        *echo.Echo
	application *app.Application
	repos       *repository.Repos
}

var server *WebServer

func Init(application *app.Application) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newTemplateRenderer()
	e.Validator = newFormValidator()
	e.HTTPErrorHandler = errorHandler

	secret := application.Config().Web.Secret
	if secret == "" {
		secret = random.String(32)
		zap.L().Warn("web secret not configured, sessions will not survive a restart")
	}
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(secret))))

	repos := repository.New(application.DB())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(reposContextKey, repos)
			return next(c)
		}
	})
	e.Use(identityMiddleware)

	server = &WebServer{root: e, application: application, repos: repos}
	return server
}

func Instance() *WebServer {
	return server
}

func (s *WebServer) Engine() *echo.Echo {
	return s.root
}

func Listen() error {
	cfg := server.application.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("web server listening on %s", addr)
	return server.root.Start(addr)
}

// Route registration helpers used by the webui package.

func GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.GET(path, h, m...)
}

func POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.POST(path, h, m...)
}

// GetRepos fetches the request-scoped repositories.
func GetRepos(c echo.Context) *repository.Repos {
	return c.Get(reposContextKey).(*repository.Repos)
}

func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "Internal Server Error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	} else {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
	}
	if !c.Response().Committed {
		_ = c.String(code, message)
	}
}

type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() *templateRenderer {
	return &templateRenderer{
		templates: template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
}

func (t *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

type formValidator struct {
	validate *validator.Validate
}

func newFormValidator() *formValidator {
	v := validator.New()
	// Report form field names instead of struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &formValidator{validate: v}
}

func (v *formValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
