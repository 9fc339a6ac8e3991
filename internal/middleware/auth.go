package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/giftlist-api/internal/auth"
	"github.com/gravadigital/giftlist-api/internal/response"
)

// ClaimsKey is the context key holding the session claims
const ClaimsKey = "claims"

// TokenParser validates session tokens
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// RequireSession rejects requests without a valid bearer token and stores
// the claims for the handlers.
func RequireSession(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.UnauthorizedError(c, "Please sign in to continue")
			return
		}

		claims, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			_ = c.Error(err)
			response.UnauthorizedError(c, "Your session has expired, please sign in again")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireSession
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
