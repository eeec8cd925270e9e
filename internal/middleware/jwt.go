package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-insight-api/internal/models"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
	"github.com/noah-isme/classroom-insight-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the verified caller identity.
const ContextIdentityKey = "currentIdentity"

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token that names a user.
func JWT(validator tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		identity := claims.Identity()
		if identity == nil {
			response.Error(c, appErrors.ErrSessionNotFound)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Request = c.Request.WithContext(models.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

var requestIdentities models.IdentityProvider = models.ContextIdentityProvider{}

// IdentityFromContext returns the identity attached by JWT, or nil.
func IdentityFromContext(c *gin.Context) *models.Identity {
	if c == nil {
		return nil
	}
	if value, exists := c.Get(ContextIdentityKey); exists {
		if identity, ok := value.(*models.Identity); ok {
			return identity
		}
	}
	if c.Request == nil {
		return nil
	}
	return requestIdentities.CurrentUser(c.Request.Context())
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
