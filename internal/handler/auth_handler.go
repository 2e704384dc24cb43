package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"authgate/internal/apperrors"
	"authgate/internal/service"
	"authgate/internal/session"
)

// AuthHandler serves the signup, login, logout and confirmation routes.
type AuthHandler struct {
	authService service.AuthService
	sessions    *session.Manager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// formData is the payload for the signup and login form templates. Using a
// struct keeps absent fields rendering as empty strings.
type formData struct {
	ErrorMessage string
	Username     string
	Email        string
}

// SignupRequest carries the signup form fields. Email is deliberately
// unvalidated; only the username is required up front.
type SignupRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password"`
	Email    string `form:"email"`
}

// LoginRequest carries the login form fields. The password length rule is a
// format check only, independent of hash verification.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"min=8"`
}

// ShowSignup renders the signup form.
func (h *AuthHandler) ShowSignup(c echo.Context) error {
	return c.Render(http.StatusOK, "signup.html", formData{})
}

// Signup handles the signup form submission. On success the user is logged in
// immediately, before confirmation, and redirected home.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, "signup.html", formData{
			ErrorMessage: "Invalid form submission.",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "signup.html", formData{
			ErrorMessage: validationMessage(err),
			Email:        req.Email,
		})
	}

	user, err := h.authService.Signup(c.Request().Context(), req.Username, req.Password, req.Email)
	if err != nil {
		httpErr := apperrors.MapError(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			c.Logger().Error(err)
		}
		return c.Render(httpErr.StatusCode, "signup.html", formData{
			ErrorMessage: httpErr.Message,
			Username:     req.Username,
			Email:        req.Email,
		})
	}

	if err := h.sessions.Establish(c, user); err != nil {
		c.Logger().Error(err)
		return c.Render(http.StatusInternalServerError, "signup.html", formData{
			ErrorMessage: "Something went wrong. Please try again later.",
		})
	}

	return c.Redirect(http.StatusFound, "/")
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", formData{})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, "login.html", formData{
			ErrorMessage: "Invalid form submission.",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "login.html", formData{
			ErrorMessage: validationMessage(err),
			Username:     req.Username,
		})
	}

	user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if apperrors.IsValidation(err) {
			httpErr := apperrors.MapError(err)
			return c.Render(httpErr.StatusCode, "login.html", formData{
				ErrorMessage: httpErr.Message,
				Username:     req.Username,
			})
		}
		// Unexpected persistence failures go to the central error handler.
		return err
	}

	if err := h.sessions.Establish(c, user); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/")
}

// Logout destroys the current session. Routed behind RequireLogin.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c); err != nil {
		c.Logger().Error(err)
		return c.Render(http.StatusInternalServerError, "home.html", echo.Map{
			"ErrorMessage": "Something went wrong. Please try again later.",
		})
	}
	return c.Redirect(http.StatusFound, "/")
}

// Confirm applies the pending->confirmed transition for the code in the URL
// and renders the profile view. An unknown code renders the view with no user;
// repeat visits with the same code are harmless.
func (h *AuthHandler) Confirm(c echo.Context) error {
	user, err := h.authService.Confirm(c.Request().Context(), c.Param("confirmationCode"))
	if err != nil {
		c.Logger().Error(err)
		return c.Render(http.StatusInternalServerError, "profile.html", echo.Map{
			"ErrorMessage": "Something went wrong. Please try again later.",
		})
	}

	data := echo.Map{}
	if user != nil {
		data["User"] = user
	}
	return c.Render(http.StatusOK, "profile.html", data)
}
