package service

import (
	"context"

	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/logger"
	"github.com/skillsenselab/iam/snowflake"
	"github.com/skillsenselab/iam/store"
	"github.com/skillsenselab/iam/validation"
)

// UpdateNotificationInput carries a single channel preference change.
type UpdateNotificationInput struct {
	Channel string `json:"channel" validate:"required,oneof=email sms push"`
	Enabled bool   `json:"enabled"`
}

// Notifications implements per-user notification preference operations.
type Notifications struct {
	settings *store.NotificationSettings
	users    *store.Users
	ids      *snowflake.Generator
	log      *logger.Logger
}

// NewNotifications creates the notification preference service.
func NewNotifications(s *store.Store, ids *snowflake.Generator, log *logger.Logger) *Notifications {
	return &Notifications{
		settings: s.NotificationSettings(),
		users:    s.Users(),
		ids:      ids,
		log:      log.WithComponent("notifications"),
	}
}

// ForUser returns the notification settings of a user.
func (s *Notifications) ForUser(ctx context.Context, userID int64) ([]store.NotificationSetting, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	settings, err := s.settings.ByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	return settings, nil
}

// Update creates or changes one channel preference for a user.
func (s *Notifications) Update(ctx context.Context, userID int64, in UpdateNotificationInput) (*store.NotificationSetting, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	id, err := s.ids.Next()
	if err != nil {
		return nil, err
	}
	setting := &store.NotificationSetting{
		ID:      id,
		UserID:  userID,
		Channel: in.Channel,
		Enabled: in.Enabled,
	}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, errors.DatabaseError(err)
	}
	return setting, nil
}

func (s *Notifications) requireUser(ctx context.Context, userID int64) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return errors.DatabaseError(err)
	}
	if user == nil {
		return errors.NotFound("user", "")
	}
	return nil
}
