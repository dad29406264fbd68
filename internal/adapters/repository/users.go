package repository

import (
	"context"
	"strings"
	"time"

	"github.com/okian/muziki/internal/domain/model"
	"gorm.io/gorm"
)

// UserRepository is the GORM backed UserStore.
type UserRepository struct {
	db *gorm.DB
}

var _ UserStore = (*UserRepository)(nil)

// NewUserRepository returns a UserStore over db.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u. The username check runs inside the same transaction as the insert;
// the unique index still backs it up under concurrent registrations.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (err error) {
	defer observe("user.create", time.Now(), &err)
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("username = ?", u.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateUsername
		}
		return translate(tx.Create(u).Error)
	})
}

// Get returns the user with id.
func (r *UserRepository) Get(ctx context.Context, id uint) (u model.User, err error) {
	defer observe("user.get", time.Now(), &err)
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

// GetByUsername returns the user with the exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (u model.User, err error) {
	defer observe("user.get_by_username", time.Now(), &err)
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

// TouchLastLogin stamps the user's last successful login.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) (err error) {
	defer observe("user.touch_last_login", time.Now(), &err)
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (n int64, err error) {
	defer observe("user.count", time.Now(), &err)
	err = r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
