package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-admin-api/internal/authz"
	"github.com/noah-isme/church-admin-api/pkg/response"
)

// RequirePermissions admits callers whose role grants any of perms.
// Services enforce the same check.
func RequirePermissions(perms ...authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authz.Check(ActorFromContext(c), perms...); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
