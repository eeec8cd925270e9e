package models

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the roles known to the dashboard.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// ParseRole normalises a free-form role string. Unknown roles map to RoleStudent.
func ParseRole(raw string) UserRole {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleTeacher), "GURU":
		return RoleTeacher
	default:
		return RoleStudent
	}
}

// Identity is the caller on whose behalf views are computed.
type Identity struct {
	Username string   `json:"username"`
	FullName string   `json:"fullName"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the access token payload issued by the login service.
type JWTClaims struct {
	Username string   `json:"username"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into an Identity.
func (c *JWTClaims) Identity() *Identity {
	if c == nil || strings.TrimSpace(c.Username) == "" {
		return nil
	}
	return &Identity{
		Username: strings.TrimSpace(c.Username),
		FullName: c.FullName,
		Role:     ParseRole(string(c.Role)),
	}
}

// IdentityProvider resolves the caller of a request. It returns nil when there is no session.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) *Identity
}

type identityContextKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity stored by WithIdentity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	identity, _ := ctx.Value(identityContextKey{}).(*Identity)
	return identity
}

// ContextIdentityProvider reads the identity attached to a request context.
type ContextIdentityProvider struct{}

// CurrentUser implements IdentityProvider.
func (ContextIdentityProvider) CurrentUser(ctx context.Context) *Identity {
	return IdentityFromContext(ctx)
}
