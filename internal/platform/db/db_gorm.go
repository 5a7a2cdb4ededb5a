// Package db opens the Postgres connection used by the repositories.
package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"acquisitions/internal/feature/users/domain/entity"
	"acquisitions/internal/platform/config"
	"acquisitions/internal/platform/logger"
)

// retryInterval is the pause between two connection attempts.
var retryInterval = 3 * time.Second

// Opener opens a gorm connection for a DSN. Tests replace it.
type Opener func(dsn string) (*gorm.DB, error)

// PostgresOpener opens a Postgres connection with error translation enabled,
// so unique violations surface as gorm.ErrDuplicatedKey.
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// BuildDSN returns the connection string for cfg. An explicit URL wins.
func BuildDSN(cfg config.DB) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		time.Sleep(min(retryInterval, remaining))
	}
}

// Migrate creates or updates the users table from the GORM model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.User{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// OpenDB connects to Postgres, retrying for cfg.ConnectTimeout, and
// optionally runs AutoMigrate.
func OpenDB(cfg config.DB, runMigrations bool, log *logger.Logger) (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, func(dsn string) (*gorm.DB, error) {
		db, err := PostgresOpener(dsn)
		if err != nil {
			log.Warn().Err(err).Msg("DB connect failed, retrying...")
		}
		return db, err
	})
	if err != nil {
		return nil, err
	}

	if runMigrations {
		// マイグレーション（users）
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Info().Msg("users table migrated")
	}

	return db, nil
}
