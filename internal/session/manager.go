package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"authgate/internal/model"
)

// CookieName is the browser cookie carrying the session ID.
const CookieName = "authgate_session"

// ContextUserKey is the echo context key under which RequireLogin exposes the
// session user to downstream handlers.
const ContextUserKey = "session.user"

// Manager ties the session store to cookie handling on echo requests.
type Manager struct {
	store Store
}

// NewManager creates a session manager.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Establish logs the user in: it stores a masked snapshot of the record under
// a fresh session ID and sets the session cookie on the response.
func (m *Manager) Establish(c echo.Context, user *model.User) error {
	id, err := m.store.Create(c.Request().Context(), user.SessionCopy())
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current returns the logged-in user for the request, or nil when the request
// carries no valid session.
func (m *Manager) Current(c echo.Context) (*model.User, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return m.store.Get(c.Request().Context(), cookie.Value)
}

// Destroy removes the request's session from the store and expires the cookie.
func (m *Manager) Destroy(c echo.Context) error {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	if err := m.store.Destroy(c.Request().Context(), cookie.Value); err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// RequireLogin gates routes that need an authenticated session, redirecting
// anonymous requests to the login form.
func (m *Manager) RequireLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := m.Current(c)
			if err != nil {
				return err
			}
			if user == nil {
				return c.Redirect(http.StatusFound, "/auth/login")
			}
			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// RequireAnonymous gates routes only reachable when not logged in, such as
// the login and signup forms.
func (m *Manager) RequireAnonymous() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := m.Current(c)
			if err != nil {
				return err
			}
			if user != nil {
				return c.Redirect(http.StatusFound, "/")
			}
			return next(c)
		}
	}
}
