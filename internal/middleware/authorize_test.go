package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sge-escolar/escola-api/internal/models"
	"github.com/sge-escolar/escola-api/internal/permission"
)

func newAuthorizedEngine(role models.UserRole, action permission.Action) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected",
		func(c *gin.Context) {
			if role != "" {
				c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
			}
			c.Next()
		},
		Authorize(action),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		},
	)
	return r
}

func TestAuthorizeDeniesProfessorOnFinance(t *testing.T) {
	r := newAuthorizedEngine(models.RoleProfessor, permission.ViewFinanceSummary)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "FORBIDDEN", envelope.Error.Code)
}

func TestAuthorizeAllowsSecretariaOnFinance(t *testing.T) {
	r := newAuthorizedEngine(models.RoleSecretaria, permission.ViewFinanceSummary)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorizeDeniesSecretariaOnGradeLaunch(t *testing.T) {
	r := newAuthorizedEngine(models.RoleSecretaria, permission.LaunchGrades)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthorizeRequiresClaims(t *testing.T) {
	r := newAuthorizedEngine("", permission.ViewBoletim)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
