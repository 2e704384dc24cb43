package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"authgate/internal/session"
)

// HomeHandler serves the landing page.
type HomeHandler struct {
	sessions *session.Manager
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(sessions *session.Manager) *HomeHandler {
	return &HomeHandler{sessions: sessions}
}

// Home renders the landing page, with the session user when logged in.
func (h *HomeHandler) Home(c echo.Context) error {
	user, err := h.sessions.Current(c)
	if err != nil {
		return err
	}

	data := echo.Map{}
	if user != nil {
		data["User"] = user
	}
	return c.Render(http.StatusOK, "home.html", data)
}
