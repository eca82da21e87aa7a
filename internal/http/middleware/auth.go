package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"railway/internal/domain"
	"railway/internal/domain/models"
)

const principalKey = "principal"

// TokenParser verifies a bearer token issued for one owner kind.
type TokenParser interface {
	Parse(kind models.OwnerKind, raw string) (domain.Principal, error)
}

// RequireUser admits only requests carrying a valid passenger token.
func RequireUser(tokens TokenParser) gin.HandlerFunc {
	return requireKind(tokens, models.OwnerUser)
}

// RequireEmployee admits only requests carrying a valid employee token.
func RequireEmployee(tokens TokenParser) gin.HandlerFunc {
	return requireKind(tokens, models.OwnerEmployee)
}

func requireKind(tokens TokenParser, kind models.OwnerKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			unauthorized(c, "missing bearer token")
			return
		}
		p, err := tokens.Parse(kind, raw)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// GetPrincipal returns the caller resolved by RequireUser or RequireEmployee.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// SetPrincipal is used by tests and by handlers that authenticate inline.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "invalid_credentials",
		"request_id": GetRequestID(c),
	})
}
