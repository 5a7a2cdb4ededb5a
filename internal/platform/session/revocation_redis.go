// Package session keeps server-side state for issued access tokens in Redis.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	jwtmw "acquisitions/internal/platform/jwt"
)

// RevocationRedis implements jwtmw.RevocationList using Redis.
// Each revoked jti is stored as its own key that expires with the token.
type RevocationRedis struct {
	client *redis.Client
	prefix string
}

var _ jwtmw.RevocationList = (*RevocationRedis)(nil)

// NewRevocationRedis creates a new RevocationRedis instance.
func NewRevocationRedis(client *redis.Client, prefix string) *RevocationRedis {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RevocationRedis{
		client: client,
		prefix: prefix,
	}
}

// revokedKey returns the Redis key for a revoked token ID.
func (r *RevocationRedis) revokedKey(jti string) string {
	return fmt.Sprintf("%s:%s", r.prefix, jti)
}

// Revoke marks jti as revoked for ttl.
func (r *RevocationRedis) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// 期限切れのトークンは記録不要
		return nil
	}
	if err := r.client.Set(ctx, r.revokedKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (r *RevocationRedis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.revokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
