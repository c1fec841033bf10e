package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivesalud/productiva/internal/domain"
)

const maxFailedLogins = 5

const lockDuration = 15 * time.Minute

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return wrapWriteErr("creating user", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ? AND deleted_at IS NULL", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateLoginAttempt records the outcome of a login: success clears the
// failure counter, a failure increments it and locks the account past the
// threshold.
func (r *UserRepository) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	updates := map[string]any{}
	if success {
		updates["failed_login_count"] = 0
		updates["locked_until"] = nil
		updates["last_login_at"] = now
	} else {
		count := u.FailedLoginCount + 1
		updates["failed_login_count"] = count
		if count >= maxFailedLogins {
			updates["locked_until"] = now.Add(lockDuration)
		}
	}

	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
