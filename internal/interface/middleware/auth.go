package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wicaksana/ledgeraudit/internal/domain/entity"
	"github.com/wicaksana/ledgeraudit/pkg/response"
)

// RequireRole rejects requests whose authenticated user does not hold the
// role. The gate has already resolved the user; a missing user here means
// the route was registered outside the gated surface.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFromCtx(c)
		if !ok {
			response.Error[any](c, http.StatusUnauthorized, "unauthenticated", nil)
			c.Abort()
			return
		}
		if user.Role != role {
			response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireRole for the admin role.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entity.RoleAdmin)
}
