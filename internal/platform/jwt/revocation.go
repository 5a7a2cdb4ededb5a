package jwtmw

import (
	"context"
	"time"
)

// RevocationList records token IDs (jti) that were signed out before expiry.
// Entries only need to live as long as the token itself.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// revoker adds signed-out tokens to a RevocationList.
type revoker struct {
	secret []byte
	list   RevocationList
	now    func() time.Time
}

// NewRevoker creates a revoker. A nil list makes RevokeToken a no-op, so
// sign-out only clears the cookie.
func NewRevoker(secret string, list RevocationList) *revoker {
	return &revoker{
		secret: []byte(secret),
		list:   list,
		now:    time.Now,
	}
}

// RevokeToken revokes tokenStr for the rest of its lifetime.
// Tokens that no longer verify are already unusable and are ignored.
func (r *revoker) RevokeToken(ctx context.Context, tokenStr string) error {
	if r.list == nil || len(r.secret) == 0 {
		return nil
	}
	claims, err := ParseToken(tokenStr, r.secret)
	if err != nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.list.Revoke(ctx, claims.ID, ttl)
}
