package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"authgate/internal/apperrors"
	"authgate/internal/handler"
	"authgate/internal/model"
	"authgate/internal/router"
	"authgate/internal/service"
	"authgate/internal/session"
)

// stubAuthService is a canned-response implementation of service.AuthService.
type stubAuthService struct {
	signupUser   *model.User
	signupErr    error
	signupCalled bool

	loginUser   *model.User
	loginErr    error
	loginCalled bool

	confirmUser *model.User
	confirmErr  error
}

func (s *stubAuthService) Signup(_ context.Context, _, _, _ string) (*model.User, error) {
	s.signupCalled = true
	return s.signupUser, s.signupErr
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (*model.User, error) {
	s.loginCalled = true
	return s.loginUser, s.loginErr
}

func (s *stubAuthService) Confirm(_ context.Context, _ string) (*model.User, error) {
	return s.confirmUser, s.confirmErr
}

// memStore is an in-memory session.Store for tests.
type memStore struct {
	sessions   map[string]model.User
	destroyErr error
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]model.User)}
}

func (s *memStore) Create(_ context.Context, user model.User) (string, error) {
	id := "sess-test"
	s.sessions[id] = user
	return id, nil
}

func (s *memStore) Get(_ context.Context, id string) (*model.User, error) {
	user, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *memStore) Destroy(_ context.Context, id string) error {
	if s.destroyErr != nil {
		return s.destroyErr
	}
	delete(s.sessions, id)
	return nil
}

func newTestServer(svc service.AuthService, store session.Store) *echo.Echo {
	e := echo.New()
	e.Logger.SetOutput(io.Discard)
	sessions := session.NewManager(store)
	router.Register(e, sessions, handler.NewHomeHandler(sessions), handler.NewAuthHandler(svc, sessions))
	return e
}

func postForm(e *echo.Echo, target, form string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func get(e *echo.Echo, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestShowSignup(t *testing.T) {
	e := newTestServer(&stubAuthService{}, newMemStore())

	rec := get(e, "/auth/signup", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign up")
}

func TestSignupMissingUsername(t *testing.T) {
	svc := &stubAuthService{}
	e := newTestServer(svc, newMemStore())

	rec := postForm(e, "/auth/signup", "password=longpassword1&email=a@x.com", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please provide your username.")
	assert.False(t, svc.signupCalled)
}

func TestSignupSuccess(t *testing.T) {
	store := newMemStore()
	svc := &stubAuthService{
		signupUser: &model.User{
			Username:         "alice",
			Password:         "$2a$10$hash",
			Email:            "a@x.com",
			Status:           model.StatusPending,
			ConfirmationCode: "abcdefghijklmnopqrstuvwxy",
		},
	}
	e := newTestServer(svc, store)

	rec := postForm(e, "/auth/signup", "username=alice&password=longpassword1&email=a@x.com", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	cookies := rec.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, session.CookieName, cookies[0].Name)
	}

	// The session snapshot carries a masked password, never the hash.
	stored := store.sessions["sess-test"]
	assert.Equal(t, "****", stored.Password)
}

func TestSignupUsernameTaken(t *testing.T) {
	svc := &stubAuthService{signupErr: service.ErrUsernameTaken}
	e := newTestServer(svc, newMemStore())

	rec := postForm(e, "/auth/signup", "username=alice&password=longpassword1&email=a@x.com", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already taken.")
}

func TestSignupDuplicateKey(t *testing.T) {
	svc := &stubAuthService{signupErr: apperrors.ErrDuplicateKey}
	e := newTestServer(svc, newMemStore())

	rec := postForm(e, "/auth/signup", "username=alice&password=longpassword1&email=a@x.com", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username needs to be unique.")
}

func TestSignupPersistenceError(t *testing.T) {
	svc := &stubAuthService{signupErr: errors.New("connection refused")}
	e := newTestServer(svc, newMemStore())

	rec := postForm(e, "/auth/signup", "username=alice&password=longpassword1&email=a@x.com", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// The raw error is logged, not rendered.
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestLoginShortPassword(t *testing.T) {
	svc := &stubAuthService{}
	e := newTestServer(svc, newMemStore())

	rec := postForm(e, "/auth/login", "username=alice&password=short", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your password needs to be at least 8 characters long.")
	assert.False(t, svc.loginCalled)
}

func TestLoginWrongCredentials(t *testing.T) {
	svc := &stubAuthService{loginErr: service.ErrWrongCredentials}
	e := newTestServer(svc, newMemStore())

	rec := postForm(e, "/auth/login", "username=alice&password=longpassword1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong credentials.")
}

func TestLoginSuccess(t *testing.T) {
	store := newMemStore()
	svc := &stubAuthService{loginUser: &model.User{Username: "alice", Password: "$2a$10$hash"}}
	e := newTestServer(svc, store)

	rec := postForm(e, "/auth/login", "username=alice&password=longpassword1", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "****", store.sessions["sess-test"].Password)
}

func TestLoginUnexpectedErrorGoesToCentralHandler(t *testing.T) {
	svc := &stubAuthService{loginErr: errors.New("connection refused")}
	e := newTestServer(svc, newMemStore())

	rec := postForm(e, "/auth/login", "username=alice&password=longpassword1", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestLoginFormGatedForLoggedIn(t *testing.T) {
	store := newMemStore()
	store.sessions["sess-test"] = model.User{Username: "alice"}
	e := newTestServer(&stubAuthService{}, store)

	rec := get(e, "/auth/login", &http.Cookie{Name: session.CookieName, Value: "sess-test"})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestLogout(t *testing.T) {
	store := newMemStore()
	store.sessions["sess-test"] = model.User{Username: "alice"}
	e := newTestServer(&stubAuthService{}, store)

	rec := get(e, "/auth/logout", &http.Cookie{Name: session.CookieName, Value: "sess-test"})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, store.sessions)
}

func TestLogoutRequiresLogin(t *testing.T) {
	e := newTestServer(&stubAuthService{}, newMemStore())

	rec := get(e, "/auth/logout", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))
}

func TestLogoutDestroyFailure(t *testing.T) {
	store := newMemStore()
	store.sessions["sess-test"] = model.User{Username: "alice"}
	store.destroyErr = errors.New("store down")
	e := newTestServer(&stubAuthService{}, store)

	rec := get(e, "/auth/logout", &http.Cookie{Name: session.CookieName, Value: "sess-test"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestConfirm(t *testing.T) {
	svc := &stubAuthService{
		confirmUser: &model.User{Username: "alice", Email: "a@x.com", Status: model.StatusConfirmed},
	}
	e := newTestServer(svc, newMemStore())

	rec := get(e, "/auth/confirm/abcdefghijklmnopqrstuvwxy", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
	assert.Contains(t, rec.Body.String(), model.StatusConfirmed)
}

func TestConfirmUnknownCode(t *testing.T) {
	e := newTestServer(&stubAuthService{}, newMemStore())

	rec := get(e, "/auth/confirm/unknown", nil)

	// The view tolerates a missing user; no error escapes.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not find an account")
}

func TestHomeShowsSessionUser(t *testing.T) {
	store := newMemStore()
	store.sessions["sess-test"] = model.User{Username: "alice", Status: model.StatusPending}
	e := newTestServer(&stubAuthService{}, store)

	rec := get(e, "/", &http.Cookie{Name: session.CookieName, Value: "sess-test"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome, alice!")
}
