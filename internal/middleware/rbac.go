package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/thepriyanshumishra/JanMitra-web-sub001/internal/models"
	appErrors "github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/errors"
	"github.com/thepriyanshumishra/JanMitra-web-sub001/pkg/response"
)

// RequireRoles enforces role-based access control for routes. Service-level
// policy still applies underneath; this gate just rejects early.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff limits a route to the staff roles.
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(models.RoleOfficer, models.RoleDeptAdmin, models.RoleSystemAdmin)
}
