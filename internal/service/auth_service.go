package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"authgate/internal/apperrors"
	"authgate/internal/mailer"
	"authgate/internal/model"
	"authgate/internal/repository"
	"authgate/internal/token"
)

const bcryptCost = 10

// minPasswordLength is a format check at login time only; it is not tied to
// hash verification.
const minPasswordLength = 8

var (
	// ErrMissingUsername is returned when a form is submitted without a username.
	ErrMissingUsername = apperrors.NewValidation("Please provide your username.")
	// ErrUsernameTaken is the advisory pre-check failure on signup. The
	// storage uniqueness constraint remains the authoritative guard.
	ErrUsernameTaken = apperrors.NewValidation("Username already taken.")
	// ErrPasswordTooShort is returned when the login password fails the length check.
	ErrPasswordTooShort = apperrors.NewValidation("Your password needs to be at least 8 characters long.")
	// ErrWrongCredentials is returned for unknown usernames and password
	// mismatches alike, so a response never reveals whether an account exists.
	ErrWrongCredentials = apperrors.NewValidation("Wrong credentials.")
)

// AuthService orchestrates the signup, login and confirmation workflow.
type AuthService interface {
	// Signup registers a new pending user and dispatches the confirmation
	// email. The returned record carries the real password hash; callers must
	// take a masked copy before attaching it to a session.
	Signup(ctx context.Context, username, password, email string) (*model.User, error)
	// Login verifies credentials and returns the matching user.
	Login(ctx context.Context, username, password string) (*model.User, error)
	// Confirm flips the user carrying the code to confirmed and returns the
	// updated record, or nil when no user carries the code. Repeat calls with
	// the same code are no-ops that return the confirmed record again.
	Confirm(ctx context.Context, code string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	mail     mailer.Mailer
	baseURL  string
	mailFrom string
	logger   *log.Logger
}

// NewAuthService creates the auth workflow service. baseURL is the externally
// reachable origin embedded in confirmation links.
func NewAuthService(userRepo repository.UserRepository, mail mailer.Mailer, baseURL, mailFrom string, logger *log.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		mail:     mail,
		baseURL:  baseURL,
		mailFrom: mailFrom,
		logger:   logger,
	}
}

func (s *authService) Signup(ctx context.Context, username, password, email string) (*model.User, error) {
	if username == "" {
		return nil, ErrMissingUsername
	}

	// Advisory existence check for a friendlier message. It races with
	// concurrent signups; the unique index on username is the real guard and
	// surfaces as a duplicate-key error from Create.
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:         username,
		Password:         string(hashed),
		Email:            email,
		Status:           model.StatusPending,
		ConfirmationCode: token.New(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Fire and forget: signup succeeds regardless of the email outcome.
	if err := s.mail.Enqueue(ctx, s.confirmationMail(user)); err != nil {
		s.logger.Printf("enqueue confirmation mail for %s: %v", user.Username, err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" {
		return nil, ErrMissingUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWrongCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrWrongCredentials
	}

	// Unconfirmed users may log in; signup itself establishes a session
	// before the confirmation email is ever opened.
	return user, nil
}

func (s *authService) Confirm(ctx context.Context, code string) (*model.User, error) {
	user, err := s.userRepo.ConfirmByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("confirm by code: %w", err)
	}
	return user, nil
}

func (s *authService) confirmationMail(user *model.User) mailer.Message {
	link := s.baseURL + "/auth/confirm/" + user.ConfirmationCode
	return mailer.Message{
		From:    s.mailFrom,
		To:      user.Email,
		Subject: "Verify your email",
		Text:    "Please click the link to verify: " + link,
		HTML: `<div>
<h3>Click here to verify your email :)</h3>
<button><a href='` + link + `' target="_blank">Click me!</a></button>
</div>`,
	}
}
