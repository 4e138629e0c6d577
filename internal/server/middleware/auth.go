package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/telelbirds/internal/service/accounts"
)

const claimsKey = "claims"

// TokenParser validates bearer tokens.
type TokenParser interface {
	ParseToken(raw string) (*accounts.Claims, error)
}

// Authenticate attaches the claims of a valid bearer token to the context.
// Requests without a token pass through anonymously; a bad token is a 401.
func Authenticate(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := parser.ParseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() gin.HandlerFunc {
	return require(func(*accounts.Claims) bool { return true })
}

// RequireStaff rejects users that may not manage farm records.
func RequireStaff() gin.HandlerFunc {
	return require(func(cl *accounts.Claims) bool { return cl.Staff || cl.Superuser })
}

// RequireSuperuser rejects everybody but superusers.
func RequireSuperuser() gin.HandlerFunc {
	return require(func(cl *accounts.Claims) bool { return cl.Superuser })
}

func require(allowed func(*accounts.Claims) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !allowed(claims) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// GetClaims returns the caller's claims, or nil for anonymous requests.
func GetClaims(c *gin.Context) *accounts.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*accounts.Claims)
	return claims
}

// UserID returns the caller's id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	claims := GetClaims(c)
	if claims == nil {
		return 0
	}
	id, err := claims.UserID()
	if err != nil {
		return 0
	}
	return id
}
