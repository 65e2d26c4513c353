package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/railway-server/internal/auth"
)

// Context keys set by the auth middleware
const (
	userIDKey = "userId"
	claimsKey = "claims"
)

// RevocationChecker reports whether a token id has been revoked
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware returns a Gin middleware for authentication.
// revocations may be nil.
func AuthMiddleware(tokens *auth.TokenManager, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the JWT token from the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		// Check if the Authorization header starts with "Bearer "
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token format")
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user ID in token")
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				abortWithError(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Unable to verify token")
				return
			}
			if revoked {
				abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token has been revoked")
				return
			}
		}

		c.Set(userIDKey, userID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func currentClaims(c *gin.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey)
	typed, _ := claims.(*auth.Claims)
	return typed
}
