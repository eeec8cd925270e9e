package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-insight-api/internal/models"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
	"github.com/noah-isme/classroom-insight-api/pkg/response"
)

// RequireRoles only lets callers holding one of roles through. It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		identity := IdentityFromContext(c)
		if identity == nil {
			response.Error(c, appErrors.ErrSessionNotFound)
			c.Abort()
			return
		}
		if _, ok := allowed[identity.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
