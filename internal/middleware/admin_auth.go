package middleware

import (
	"net/http"

	"survey_insight_go/internal/model"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware 只放行 ADMIN 角色，必须挂在 AuthMiddleware 之后。
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		curator, ok := CuratorFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "Curator not found in context",
			})
			return
		}
		if curator.Role != model.CuratorRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    http.StatusForbidden,
				"message": "Forbidden: Only admin can access this resource",
			})
			return
		}
		c.Next()
	}
}
