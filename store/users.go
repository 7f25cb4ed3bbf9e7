package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Users is the user repository.
type Users struct {
	db *gorm.DB
}

// Create inserts a new user.
func (r *Users) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Save persists changes to an existing user.
func (r *Users) Save(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ByID returns the user with the given ID, or (nil, nil) if absent.
func (r *Users) ByID(ctx context.Context, id int64) (*User, error) {
	return r.first(ctx, "id = ?", id)
}

// ByEmail returns the user with the given email, or (nil, nil) if absent.
func (r *Users) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = ?", email)
}

// ByUsername returns the user with the given username, or (nil, nil) if absent.
func (r *Users) ByUsername(ctx context.Context, username string) (*User, error) {
	return r.first(ctx, "username = ?", username)
}

// ExistsByEmail reports whether a user with the given email exists.
func (r *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

// ExistsByUsername reports whether a user with the given username exists.
func (r *Users) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *Users) first(ctx context.Context, query string, arg interface{}) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Users) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Where(query, arg).Count(&count).Error
	return count > 0, err
}
