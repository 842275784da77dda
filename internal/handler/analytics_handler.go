package handler

import (
	"context"
	"net/http"

	"survey_insight_go/internal/service"
	"survey_insight_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 负责看板聚合、打标预览和健康检查。
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	taggingService   service.TaggingService
	ping             func(ctx context.Context) error
}

// NewAnalyticsHandler 的 ping 用于健康检查，通常是数据库连通性检查，可以为 nil。
func NewAnalyticsHandler(analyticsService service.AnalyticsService, taggingService service.TaggingService,
	ping func(ctx context.Context) error) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, taggingService: taggingService, ping: ping}
}

// PreviewRequest 是打标预览的请求体，MaxTags 为 0 时使用配置的默认值。
type PreviewRequest struct {
	Text    string `json:"text" binding:"required"`
	MaxTags int    `json:"maxTags"`
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	analytics, err := h.analyticsService.Overview(c.Request.Context())
	if err != nil {
		writeServiceError(c, "AnalyticsHandler.Overview", err)
		return
	}
	writeOK(c, http.StatusOK, "Analytics retrieved successfully", analytics)
}

func (h *AnalyticsHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid request body")
		return
	}
	preview, err := h.taggingService.Preview(req.Text, req.MaxTags)
	if err != nil {
		writeServiceError(c, "AnalyticsHandler.Preview", err)
		return
	}
	writeOK(c, http.StatusOK, "Preview generated successfully", preview)
}

func (h *AnalyticsHandler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			log.Warnf("AnalyticsHandler.Health: database unreachable: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"code":    http.StatusServiceUnavailable,
				"message": "database unavailable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "ok",
	})
}
