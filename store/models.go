package store

import "time"

// User is an end-user principal. The ID is a snowflake identifier
// assigned by the creating service, never by the database.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string
	LastName     string
	Disabled     bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Client is a machine-client principal. ClientID is the public OAuth2
// identifier; SecretHash is the bcrypt hash of the client secret. The
// raw secret is surfaced exactly once at creation or regeneration.
type Client struct {
	ID         int64     `gorm:"primaryKey"`
	Name       string    `gorm:"not null"`
	ClientID   string    `gorm:"uniqueIndex;not null"`
	SecretHash string    `gorm:"not null"`
	Disabled   bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// NotificationSetting stores a per-user, per-channel notification
// preference.
type NotificationSetting struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"index;not null"`
	Channel   string    `gorm:"not null"`
	Enabled   bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
