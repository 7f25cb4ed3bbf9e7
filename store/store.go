// Package store persists IAM entities with GORM over SQLite.
//
// Only one-way credential hashes are ever stored; raw secrets and
// passwords never touch the database.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillsenselab/iam/logger"
)

// Store wraps a GORM database handle and exposes typed repositories.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the database, applies pool settings, and optionally
// runs auto-migration for all IAM models.
func Open(cfg Config, log *logger.Logger) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", cfg.DSN, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}

	s := &Store{db: db, log: log.WithComponent("store")}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&User{}, &Client{}, &NotificationSetting{}); err != nil {
			return nil, fmt.Errorf("store: auto-migrate: %w", err)
		}
		s.log.Info("Auto-migration complete")
	}

	s.log.Info("Database connection established", map[string]interface{}{
		"dsn": cfg.DSN,
	})
	return s, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Users returns the user repository.
func (s *Store) Users() *Users {
	return &Users{db: s.db}
}

// Clients returns the client repository.
func (s *Store) Clients() *Clients {
	return &Clients{db: s.db}
}

// NotificationSettings returns the notification-settings repository.
func (s *Store) NotificationSettings() *NotificationSettings {
	return &NotificationSettings{db: s.db}
}
