package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"car-rental-service/internal/auth"
)

// TokenCookie is the cookie carrying the identity token.
const TokenCookie = "token"

const userIDKey = "user_id"

type TokenVerifier interface {
	Verify(token string) auth.Verification
}

// TokenFromCookie returns the token cookie's value, or "" when it is absent.
func TokenFromCookie(c *gin.Context) string {
	token, err := c.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// JWTAuthMiddleware rejects requests without a valid token cookie and stores the
// token's user id in the context.
func JWTAuthMiddleware(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := v.Verify(TokenFromCookie(c))
		switch res.Status {
		case auth.TokenValid:
			c.Set(userIDKey, res.UserID)
			c.Next()
		case auth.TokenExpired:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
		case auth.TokenMissing:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		}
	}
}

// UserID returns the id stored by JWTAuthMiddleware, or "" on unauthenticated routes.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
