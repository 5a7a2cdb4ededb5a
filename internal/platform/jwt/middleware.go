// Package jwtmw issues access tokens and guards routes that require them.
package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"acquisitions/internal/platform/http/middleware"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
// The token is read from the cookieName cookie first, then from an
// "Authorization: Bearer" header. When revoked is non-nil, signed-out tokens
// are rejected.
func AuthRequired(secret, cookieName string, revoked RevocationList) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if len(key) == 0 {
			// Server misconfiguration (JWT_SECRET not set)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server misconfigured"})
			return
		}

		tokenStr := TokenFromRequest(c, cookieName)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims, err := ParseToken(tokenStr, key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if revoked != nil && claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// 失効状態を確認できない場合は通さない
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token revoked"})
				return
			}
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// TokenFromRequest returns the raw token from the cookie or the Bearer header.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if v, ok := middleware.Cookie(c, cookieName); ok && v != "" {
		return v
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// CurrentUser returns the identity stored by AuthRequired.
func CurrentUser(c *gin.Context) (id uint, role string, ok bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, "", false
	}
	id, ok = v.(uint)
	if !ok {
		return 0, "", false
	}
	return id, c.GetString(ContextUserRole), true
}
