// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/larderline/larder-backend/internal/i18n"
)

// I18nMiddleware picks the first supported language of Accept-Language, else defaultLang.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", negotiateLanguage(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

// Handles values like "es-MX,es;q=0.9,en;q=0.8". Quality weights are ignored and order is kept.
func negotiateLanguage(header, defaultLang string) string {
	for _, part := range strings.Split(header, ",") {
		subtags := strings.FieldsFunc(strings.Split(part, ";")[0], func(r rune) bool {
			return r == '-' || r == '_' || r == ' '
		})
		if len(subtags) == 0 {
			continue
		}
		if base := strings.ToLower(subtags[0]); i18n.IsSupported(base) {
			return base
		}
	}
	return defaultLang
}
