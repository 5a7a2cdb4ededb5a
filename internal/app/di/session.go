package di

import (
	"github.com/redis/go-redis/v9"

	jwtmw "acquisitions/internal/platform/jwt"
	"acquisitions/internal/platform/session"
)

// NewRevocationList creates the token revocation list.
// Without Redis it returns nil and sign-out only clears the cookie.
func NewRevocationList(rdb *redis.Client) jwtmw.RevocationList {
	if rdb == nil {
		return nil
	}
	return session.NewRevocationRedis(rdb, "revoked")
}
