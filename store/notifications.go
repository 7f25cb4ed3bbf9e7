package store

import (
	"context"

	"gorm.io/gorm"
)

// NotificationSettings is the per-user notification preference repository.
type NotificationSettings struct {
	db *gorm.DB
}

// ByUser returns all notification settings for a user.
func (r *NotificationSettings) ByUser(ctx context.Context, userID int64) ([]NotificationSetting, error) {
	var settings []NotificationSetting
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("channel").Find(&settings).Error
	return settings, err
}

// Upsert creates or updates the setting for a user/channel pair.
func (r *NotificationSettings) Upsert(ctx context.Context, setting *NotificationSetting) error {
	var existing NotificationSetting
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel = ?", setting.UserID, setting.Channel).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Enabled = setting.Enabled
		return r.db.WithContext(ctx).Save(&existing).Error
	case err == gorm.ErrRecordNotFound:
		return r.db.WithContext(ctx).Create(setting).Error
	default:
		return err
	}
}
