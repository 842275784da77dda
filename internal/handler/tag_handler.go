package handler

import (
	"net/http"

	"survey_insight_go/internal/service"

	"github.com/gin-gonic/gin"
)

// TagHandler 负责标签目录接口。
type TagHandler struct {
	tagService service.TagService
}

func NewTagHandler(tagService service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// SetTagStatusRequest 使用指针区分“未传”和 false。
type SetTagStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// List 返回有效标签及有效响应数。
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagService.ListWithCounts(c.Request.Context())
	if err != nil {
		writeServiceError(c, "TagHandler.List", err)
		return
	}
	writeOK(c, http.StatusOK, "Tags retrieved successfully", tags)
}

func (h *TagHandler) GetTree(c *gin.Context) {
	tree, err := h.tagService.GetTree(c.Request.Context())
	if err != nil {
		writeServiceError(c, "TagHandler.GetTree", err)
		return
	}
	writeOK(c, http.StatusOK, "Tag tree retrieved successfully", tree)
}

// Responses 返回有效标签包含该标签的所有响应。
func (h *TagHandler) Responses(c *gin.Context) {
	tagID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	responses, err := h.tagService.TaggedResponses(c.Request.Context(), tagID)
	if err != nil {
		writeServiceError(c, "TagHandler.Responses", err)
		return
	}
	writeOK(c, http.StatusOK, "Tagged responses retrieved successfully", responses)
}

// SetStatus 启用或停用标签（管理员）。
func (h *TagHandler) SetStatus(c *gin.Context) {
	tagID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SetTagStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.SetStatus(c.Request.Context(), tagID, *req.IsActive)
	if err != nil {
		writeServiceError(c, "TagHandler.SetStatus", err)
		return
	}
	writeOK(c, http.StatusOK, "Tag status updated successfully", tag)
}
