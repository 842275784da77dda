package handler

import (
	"errors"
	"net/http"
	"strconv"

	"survey_insight_go/internal/middleware"
	"survey_insight_go/internal/service"
	"survey_insight_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// mapServiceError 把 Service 层哨兵错误转换为 HTTP 状态码和对外消息。
func mapServiceError(err error) (httpStatus int, message string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request parameters"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, service.ErrResponseNotFound):
		return http.StatusNotFound, "Response not found"
	case errors.Is(err, service.ErrTagNotFound):
		return http.StatusNotFound, "Tag not found"
	case errors.Is(err, service.ErrQuestionNotFound):
		return http.StatusNotFound, "Question not found"
	case errors.Is(err, service.ErrMappingNotFound):
		return http.StatusNotFound, "Question tag mapping not found"
	case errors.Is(err, service.ErrCuratorNotFound):
		return http.StatusNotFound, "Curator not found"
	case errors.Is(err, service.ErrCuratorAlreadyExists):
		return http.StatusConflict, "Curator already exists"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeServiceError 记录并输出统一的错误响应。5xx 才打 warn，4xx 属于调用方问题只打 debug。
func writeServiceError(c *gin.Context, op string, err error) {
	status, msg := mapServiceError(err)
	if status >= http.StatusInternalServerError {
		log.Warnf("%s: %v", op, err)
	} else {
		log.Debugf("%s: %v", op, err)
	}
	c.JSON(status, gin.H{
		"code":    status,
		"message": msg,
	})
}

func writeOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
		"data":    data,
	})
}

func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    http.StatusBadRequest,
		"message": message,
	})
}

// parseIDParam 解析路径上的正整数 ID，失败时直接写 400 并返回 false。
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// actorFromContext 返回写入修正时记录的操作人，即当前 token 的用户名。
func actorFromContext(c *gin.Context) string {
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		return claims.Username
	}
	return ""
}
