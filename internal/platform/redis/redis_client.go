// Package redis opens the optional Redis client used for caching.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"acquisitions/internal/platform/config"
	"acquisitions/internal/platform/logger"
)

const pingTimeout = 3 * time.Second

// NewRedisClient connects to Redis and verifies the connection with PING.
// The caller treats an error as "run without cache".
func NewRedisClient(cfg config.Redis, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Str("address", cfg.Addr()).Msg("Redis connection failed")
		_ = rdb.Close()
		return nil, err
	}

	log.Info().Str("address", cfg.Addr()).Msg("Redis connection successful")
	return rdb, nil
}
