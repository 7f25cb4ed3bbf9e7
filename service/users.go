// Package service implements the business operations of the identity
// service on top of the persistence and credential layers.
package service

import (
	"context"
	"strconv"

	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/logger"
	"github.com/skillsenselab/iam/snowflake"
	"github.com/skillsenselab/iam/store"
	"github.com/skillsenselab/iam/validation"
	"github.com/skillsenselab/iam/vault"
)

// CreateUserInput carries the fields of a user registration request.
type CreateUserInput struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name" validate:"max=128"`
}

// UpdateUserInput carries the mutable profile fields of a user.
type UpdateUserInput struct {
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name" validate:"max=128"`
}

// ChangePasswordInput carries a password change request. The new
// password must be entered twice and both entries must match.
type ChangePasswordInput struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8,max=72"`
	ReenterNewPassword string `json:"reenter_new_password" validate:"required"`
}

// Users implements user lifecycle operations.
type Users struct {
	users *store.Users
	ids   *snowflake.Generator
	vault *vault.Vault
	log   *logger.Logger
}

// NewUsers creates the user service.
func NewUsers(s *store.Store, ids *snowflake.Generator, v *vault.Vault, log *logger.Logger) *Users {
	return &Users{
		users: s.Users(),
		ids:   ids,
		vault: v,
		log:   log.WithComponent("users"),
	}
}

// Create registers a new user. The username and email must both be
// unused; the password is hashed before anything touches storage.
func (s *Users) Create(ctx context.Context, in CreateUserInput) (*store.User, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if taken {
		return nil, errors.AlreadyExists("user").WithDetail("field", "email")
	}
	taken, err = s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if taken {
		return nil, errors.AlreadyExists("user").WithDetail("field", "username")
	}

	id, err := s.ids.Next()
	if err != nil {
		return nil, err
	}
	hash, err := s.vault.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &store.User{
		ID:           id,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.DatabaseError(err)
	}

	s.log.Info("User created", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

// GetByID returns the user with the given ID.
func (s *Users) GetByID(ctx context.Context, id int64) (*store.User, error) {
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if user == nil {
		return nil, errors.NotFound("user", strconv.FormatInt(id, 10))
	}
	return user, nil
}

// GetByEmail returns the user with the given email.
func (s *Users) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if user == nil {
		return nil, errors.NotFound("user", email)
	}
	return user, nil
}

// GetByUsername returns the user with the given username.
func (s *Users) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	user, err := s.users.ByUsername(ctx, username)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if user == nil {
		return nil, errors.NotFound("user", username)
	}
	return user, nil
}

// Update changes the mutable profile fields of a user.
func (s *Users) Update(ctx context.Context, id int64, in UpdateUserInput) (*store.User, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	if err := s.users.Save(ctx, user); err != nil {
		return nil, errors.DatabaseError(err)
	}
	return user, nil
}

// SetDisabled enables or disables a user account. A disabled user
// cannot authenticate but keeps its records.
func (s *Users) SetDisabled(ctx context.Context, id int64, disabled bool) (*store.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Disabled = disabled
	if err := s.users.Save(ctx, user); err != nil {
		return nil, errors.DatabaseError(err)
	}
	s.log.Info("User disabled state changed", map[string]interface{}{
		"user_id":  id,
		"disabled": disabled,
	})
	return user, nil
}

// ChangePassword replaces the user's password after verifying the old
// one and the matching re-entry of the new one.
func (s *Users) ChangePassword(ctx context.Context, id int64, in ChangePasswordInput) error {
	if err := validation.Validate(in); err != nil {
		return err
	}
	if in.NewPassword != in.ReenterNewPassword {
		return errors.BadRequest("New password entries do not match.")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.vault.Verify(in.OldPassword, user.PasswordHash) {
		return errors.BadRequest("Old password is incorrect.")
	}

	hash, err := s.vault.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Save(ctx, user); err != nil {
		return errors.DatabaseError(err)
	}

	s.log.Info("User password changed", map[string]interface{}{"user_id": id})
	return nil
}
