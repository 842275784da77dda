package handler

import (
	"net/http"

	"survey_insight_go/internal/service"
	"survey_insight_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责修正人登录。
type AuthHandler struct {
	curatorService service.CuratorService
}

func NewAuthHandler(curatorService service.CuratorService) *AuthHandler {
	return &AuthHandler{curatorService: curatorService}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验用户名密码并签发访问令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("AuthHandler.Login: failed to bind request: %v", err)
		writeBadRequest(c, "Invalid request body")
		return
	}

	res, err := h.curatorService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(c, "AuthHandler.Login", err)
		return
	}
	writeOK(c, http.StatusOK, "Login successful", res)
}
