package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"authgate/internal/apperrors"
	"authgate/internal/model"
)

// UserRepository defines persistence operations for user records.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// ConfirmByCode marks the user carrying the given confirmation code as
	// confirmed and returns the post-update record. An unknown code is a
	// no-op and returns (nil, nil).
	ConfirmByCode(ctx context.Context, code string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user %q: %w", user.Username, apperrors.ErrDuplicateKey)
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ConfirmByCode(ctx context.Context, code string) (*model.User, error) {
	// Update-then-reload: the update is a no-op on repeat visits (the status
	// is already confirmed), but the reload still returns the current record,
	// which keeps the operation idempotent.
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("confirmation_code = ?", code).
		Update("status", model.StatusConfirmed).Error
	if err != nil {
		return nil, err
	}

	var user model.User
	err = r.db.WithContext(ctx).Where("confirmation_code = ?", code).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
