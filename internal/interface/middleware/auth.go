package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
	"github.com/oksasatya/user-accounts-service/pkg/helpers"
	"github.com/oksasatya/user-accounts-service/pkg/response"
)

const CtxClaimsKey = "claims"

// TokenVerifier is satisfied by the user service.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (entity.Claims, error)
}

// Auth reads the session token from the token cookie or a Bearer header and
// stores the verified claims in the Gin context under CtxClaimsKey.
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "Invalid token", nil)
			return
		}
		claims, err := v.VerifyToken(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid token", nil)
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims set by Auth.
func ClaimsFrom(c *gin.Context) (entity.Claims, bool) {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return entity.Claims{}, false
	}
	claims, ok := v.(entity.Claims)
	return claims, ok
}

// TokenFromRequest reads the session token from the cookie, falling back to
// an Authorization: Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie(helpers.TokenCookieName); err == nil && tok != "" {
		return tok
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
