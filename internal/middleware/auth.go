package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/service"
	"survey_insight_go/pkg/token"

	"github.com/gin-gonic/gin"
)

const (
	ctxClaimsKey  = "claims"
	ctxCuratorKey = "curator"
)

// CuratorLookup 按 ID 查询修正人，service.CuratorService 满足该接口。
type CuratorLookup interface {
	FindByID(ctx context.Context, id uint) (*model.Curator, error)
}

// AuthMiddleware 校验 Bearer 访问令牌，并确认令牌中的修正人仍然存在。
// 通过后把 claims 和 *model.Curator 注入上下文，写接口从 claims 里取 AppliedBy。
func AuthMiddleware(jwtManager *token.JWTManager, curators CuratorLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtManager == nil || curators == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Internal server error",
			})
			return
		}

		tokenString, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "Invalid authorization header",
			})
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil || claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "Invalid or expired access token",
			})
			return
		}

		curator, err := curators.FindByID(c.Request.Context(), claims.CuratorID)
		if err != nil {
			if errors.Is(err, service.ErrCuratorNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code":    http.StatusUnauthorized,
					"message": "Curator not found",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Internal server error",
			})
			return
		}
		if curator == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "Curator not found",
			})
			return
		}

		c.Set(ctxClaimsKey, claims)
		c.Set(ctxCuratorKey, curator)
		c.Next()
	}
}

// ClaimsFromContext 读取 AuthMiddleware 注入的 claims。
func ClaimsFromContext(c *gin.Context) (*token.CustomClaims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.CustomClaims)
	return claims, ok && claims != nil
}

// CuratorFromContext 读取 AuthMiddleware 注入的修正人。
func CuratorFromContext(c *gin.Context) (*model.Curator, bool) {
	v, ok := c.Get(ctxCuratorKey)
	if !ok {
		return nil, false
	}
	curator, ok := v.(*model.Curator)
	return curator, ok && curator != nil
}

// extractBearerToken 期望格式：Bearer <token>，scheme 大小写不敏感。
func extractBearerToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	if parts[1] == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}
