package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"authgate/internal/handler"
	"authgate/internal/session"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	sessions *session.Manager,
	homeHandler *handler.HomeHandler,
	authHandler *handler.AuthHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Renderer = handler.NewRenderer()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = errorHandler

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/", homeHandler.Home)

	auth := e.Group("/auth")
	auth.GET("/signup", authHandler.ShowSignup)
	auth.POST("/signup", authHandler.Signup)
	auth.GET("/login", authHandler.ShowLogin, sessions.RequireAnonymous())
	auth.POST("/login", authHandler.Login, sessions.RequireAnonymous())
	auth.GET("/logout", authHandler.Logout, sessions.RequireLogin())
	auth.GET("/confirm/:confirmationCode", authHandler.Confirm)
}

// errorHandler is the central error handler: routes that do not render their
// failures inline (login's unexpected persistence errors, middleware errors)
// end up here. Raw errors are logged, never shown to the client.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Something went wrong. Please try again later."

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}

	if rerr := c.Render(code, "home.html", echo.Map{"ErrorMessage": msg}); rerr != nil {
		c.Logger().Error(rerr)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
