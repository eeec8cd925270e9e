package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-insight-api/internal/models"
	appErrors "github.com/noah-isme/classroom-insight-api/pkg/errors"
)

type fakeValidator struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (f *fakeValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	f.token = token
	return f.claims, f.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAttachesIdentity(t *testing.T) {
	validator := &fakeValidator{claims: &models.JWTClaims{Username: " ani ", FullName: "Ani", Role: "student"}}
	var seen *models.Identity
	r := newRouter(JWT(validator), func(c *gin.Context) {
		seen = IdentityFromContext(c)
		c.Status(http.StatusNoContent)
	})

	rec := serve(r, "Bearer abc.def")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc.def", validator.token)
	require.NotNil(t, seen)
	assert.Equal(t, "ani", seen.Username)
	assert.Equal(t, models.RoleStudent, seen.Role)
}

func TestJWTExposesIdentityThroughRequestContext(t *testing.T) {
	validator := &fakeValidator{claims: &models.JWTClaims{Username: "bu.sari", Role: models.RoleTeacher}}
	var provided *models.Identity
	r := newRouter(JWT(validator), func(c *gin.Context) {
		provided = models.ContextIdentityProvider{}.CurrentUser(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	serve(r, "Bearer t")

	require.NotNil(t, provided)
	assert.Equal(t, "bu.sari", provided.Username)
	assert.Equal(t, models.RoleTeacher, provided.Role)
}

func TestIdentityFromContextFallsBackToRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request = req.WithContext(models.WithIdentity(req.Context(), &models.Identity{Username: "ani"}))

	identity := IdentityFromContext(c)
	require.NotNil(t, identity)
	assert.Equal(t, "ani", identity.Username)
}

func TestJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	r := newRouter(JWT(&fakeValidator{}), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic Zm9vOmJhcg==").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer ").Code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	r := newRouter(JWT(&fakeValidator{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)
}

func TestJWTRejectsClaimsWithoutUser(t *testing.T) {
	r := newRouter(JWT(&fakeValidator{claims: &models.JWTClaims{Role: models.RoleTeacher}}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rec := serve(r, "Bearer token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "SESSION_NOT_FOUND")
}

func TestRequireRoles(t *testing.T) {
	teacher := &fakeValidator{claims: &models.JWTClaims{Username: "bu.sari", Role: "guru"}}
	student := &fakeValidator{claims: &models.JWTClaims{Username: "ani", Role: models.RoleStudent}}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	r := newRouter(JWT(teacher), RequireRoles(models.RoleTeacher, models.RoleAdmin), ok)
	assert.Equal(t, http.StatusNoContent, serve(r, "Bearer t").Code)

	r = newRouter(JWT(student), RequireRoles(models.RoleTeacher, models.RoleAdmin), ok)
	assert.Equal(t, http.StatusForbidden, serve(r, "Bearer t").Code)

	r = newRouter(RequireRoles(models.RoleTeacher), ok)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
}

func TestWithResponseMetaRecordsWarnings(t *testing.T) {
	var meta map[string]interface{}
	r := newRouter(WithResponseMeta(), func(c *gin.Context) {
		SetWarnings(c, 2)
		meta = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	serve(r, "")
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["degraded"])
	assert.Equal(t, 2, meta["warning_count"])
	assert.Contains(t, meta, "processing_time_ms")
}
