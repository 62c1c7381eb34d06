// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/larderline/larder-backend/internal/i18n"
	"github.com/larderline/larder-backend/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			key := i18n.KeyAuthInvalidToken
			if utils.IsTokenExpired(err) {
				key = i18n.KeyAuthTokenExpired
			}
			utils.UnauthorizedResponse(c, i18n.T(lang, key))
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.Next()
			return
		}

		// Set user info in context if token is valid
		setClaims(c, claims)
		c.Next()
	}
}

// Extract token from "Bearer <token>"
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setClaims(c *gin.Context, claims *utils.JWTClaims) {
	c.Set("user_id", claims.Subject)
	c.Set("user_name", claims.Name)
	c.Set("user_email", claims.Email)
}
