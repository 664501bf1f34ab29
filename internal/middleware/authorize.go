package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sge-escolar/escola-api/internal/models"
	"github.com/sge-escolar/escola-api/internal/permission"
	appErrors "github.com/sge-escolar/escola-api/pkg/errors"
	"github.com/sge-escolar/escola-api/pkg/response"
)

// Authorize gates a route behind one capability. The route declares the
// action it performs and the permission table decides which roles carry
// it; handlers never compare roles directly.
func Authorize(action permission.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !permission.Allowed(claims.Role, action) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
