package blockpress

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName   = "admin_session"
	sessionMaxAge = 12 * time.Hour
	sessionCtxKey = "blockpress.session"
)

// AdminSession is the operator's login state for one request. It is loaded
// once by middleware; handlers read it through SessionFrom.
type AdminSession struct {
	ID            string
	Authenticated bool
	IssuedAt      time.Time
}

// SessionFrom returns the session loaded for this request. Requests without
// a valid admin cookie get the zero session.
func SessionFrom(c echo.Context) AdminSession {
	s, _ := c.Get(sessionCtxKey).(AdminSession)
	return s
}

// IsAdmin reports whether the request carries an authenticated session.
func IsAdmin(c echo.Context) bool {
	return SessionFrom(c).Authenticated
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(sessionMaxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// loadSession decodes the admin cookie into an AdminSession. It must run
// after session.Middleware.
func (a *App) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(sessionCtxKey, a.readSession(c))
		return next(c)
	}
}

func (a *App) readSession(c echo.Context) AdminSession {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return AdminSession{}
	}
	id, _ := sess.Values["id"].(string)
	auth, _ := sess.Values["authenticated"].(bool)
	issued, _ := sess.Values["issued"].(int64)
	if id == "" || !auth {
		return AdminSession{}
	}
	s := AdminSession{ID: id, Authenticated: true, IssuedAt: time.Unix(issued, 0)}
	if a.now().Sub(s.IssuedAt) > sessionMaxAge {
		return AdminSession{}
	}
	return s
}

// startAdminSession issues a fresh session ID so a login never reuses the
// drafts of an earlier one.
func (a *App) startAdminSession(c echo.Context) (AdminSession, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return AdminSession{}, err
	}
	s := AdminSession{ID: uuid.NewString(), Authenticated: true, IssuedAt: a.now()}
	sess.Values["id"] = s.ID
	sess.Values["authenticated"] = true
	sess.Values["issued"] = s.IssuedAt.Unix()
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return AdminSession{}, err
	}
	c.Set(sessionCtxKey, s)
	return s, nil
}

func (a *App) endAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	c.Set(sessionCtxKey, AdminSession{})
	return sess.Save(c.Request(), c.Response())
}

// requireAdmin sends unauthenticated requests to the login page.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.Redirect(http.StatusSeeOther, "/admin/")
		}
		return next(c)
	}
}
