// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	usersadapters "acquisitions/internal/feature/users/adapters"
	"acquisitions/internal/feature/users/usecase"
	"acquisitions/internal/platform/cache"
)

// userCacheTTL is how long a cached user or user list stays valid.
const userCacheTTL = 5 * time.Minute

// NewUserRepository creates a UserRepository implementation.
// If Redis is available, the Postgres repository is wrapped with a Redis cache.
// Otherwise, it talks to Postgres directly.
func NewUserRepository(rdb *redis.Client, db *gorm.DB) usecase.UserRepository {
	repo := usersadapters.NewUserPostgres(db)
	if rdb != nil {
		return cache.NewCachingUserRepository(rdb, userCacheTTL, repo, "users")
	}
	return repo
}
