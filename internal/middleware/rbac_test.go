package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campushq/campus-admin-api/internal/models"
)

func rbacTestContext(t *testing.T, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analysis/analytics?date=2026-03-10", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	return c, rec
}

func TestRequireRolesAdmitsListedRole(t *testing.T) {
	c, rec := rbacTestContext(t, &models.JWTClaims{UserID: "user-1", Role: models.RoleAdmin})

	RequireRoles(models.RoleAdmin)(c)

	assert.False(t, c.IsAborted())
	assert.NotEqual(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesRejectsOtherRoles(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleFaculty, models.RoleStudent} {
		c, rec := rbacTestContext(t, &models.JWTClaims{UserID: "user-1", Role: role})

		RequireRoles(models.RoleAdmin)(c)

		assert.True(t, c.IsAborted(), "role %s must not pass an admin-only guard", role)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	c, rec := rbacTestContext(t, nil)

	RequireRoles(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRBACSelfAllowsOwnRecord(t *testing.T) {
	c, _ := rbacTestContext(t, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	c.Params = gin.Params{{Key: "id", Value: "user-1"}}

	RBAC(string(models.RoleAdmin), "SELF")(c)

	assert.False(t, c.IsAborted())
}

func TestRBACSelfRejectsOtherRecord(t *testing.T) {
	c, rec := rbacTestContext(t, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	c.Params = gin.Params{{Key: "id", Value: "user-2"}}

	RBAC(string(models.RoleAdmin), "SELF")(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
