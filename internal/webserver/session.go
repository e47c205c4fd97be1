package webserver

import (
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/netopsdesk/siteportal/internal/domain"
)

const SessionName = "siteportal_session"

const identityContextKey = "siteportal_identity"

// Identity is the authenticated caller attached to the request context.
// A nil Identity means the caller is anonymous.
type Identity struct {
	ID       int64
	Username string
	Role     string
}

func identityMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(SessionName, c)
		if err == nil {
			uid, ok := sess.Values["uid"].(int64)
			username, _ := sess.Values["username"].(string)
			role, _ := sess.Values["role"].(string)
			if ok && uid > 0 {
				c.Set(identityContextKey, &Identity{ID: uid, Username: username, Role: role})
			}
		}
		return next(c)
	}
}

// CurrentIdentity returns the caller's identity, or nil when anonymous.
func CurrentIdentity(c echo.Context) *Identity {
	if id, ok := c.Get(identityContextKey).(*Identity); ok {
		return id
	}
	return nil
}

// EstablishIdentity binds the given user to the session.
func EstablishIdentity(c echo.Context, user *domain.SysUser) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}
	sess.Values["uid"] = user.ID
	sess.Values["username"] = user.Username
	sess.Values["role"] = user.Role
	c.Set(identityContextKey, &Identity{ID: user.ID, Username: user.Username, Role: user.Role})
	return sess.Save(c.Request(), c.Response())
}

// ClearIdentity removes the session identity unconditionally.
func ClearIdentity(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, "uid")
	delete(sess.Values, "username")
	delete(sess.Values, "role")
	c.Set(identityContextKey, nil)
	return sess.Save(c.Request(), c.Response())
}

// Notice is a one-shot banner shown on the next rendered page.
type Notice struct {
	Level   string
	Message string
}

// Flash queues a notice in the session.
func Flash(c echo.Context, level, message string) {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return
	}
	sess.AddFlash(level + "|" + message)
	_ = sess.Save(c.Request(), c.Response())
}

// TakeFlashes drains queued notices.
func TakeFlashes(c echo.Context) []Notice {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(c.Request(), c.Response())

	notices := make([]Notice, 0, len(raw))
	for _, f := range raw {
		s, ok := f.(string)
		if !ok {
			continue
		}
		parts := strings.SplitN(s, "|", 2)
		if len(parts) == 2 {
			notices = append(notices, Notice{Level: parts[0], Message: parts[1]})
		} else {
			notices = append(notices, Notice{Level: "info", Message: s})
		}
	}
	return notices
}
