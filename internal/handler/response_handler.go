package handler

import (
	"net/http"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/service"

	"github.com/gin-gonic/gin"
)

// ResponseHandler 负责响应浏览和人工修正。
type ResponseHandler struct {
	responseService service.ResponseService
	overrideService service.OverrideService
}

func NewResponseHandler(responseService service.ResponseService, overrideService service.OverrideService) *ResponseHandler {
	return &ResponseHandler{responseService: responseService, overrideService: overrideService}
}

// CreateOverrideRequest 是追加一条人工修正的请求体。Action 取 ADD / REMOVE，大小写不敏感。
type CreateOverrideRequest struct {
	TagID  uint   `json:"tagId" binding:"required"`
	Action string `json:"action" binding:"required"`
	Notes  string `json:"notes"`
}

// List 返回按问题分组、带有效标签的响应。
func (h *ResponseHandler) List(c *gin.Context) {
	groups, err := h.responseService.ListByQuestion(c.Request.Context())
	if err != nil {
		writeServiceError(c, "ResponseHandler.List", err)
		return
	}
	writeOK(c, http.StatusOK, "Responses retrieved successfully", groups)
}

func (h *ResponseHandler) Tags(c *gin.Context) {
	responseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.overrideService.ResponseTags(c.Request.Context(), responseID)
	if err != nil {
		writeServiceError(c, "ResponseHandler.Tags", err)
		return
	}
	writeOK(c, http.StatusOK, "Response tags retrieved successfully", detail)
}

func (h *ResponseHandler) Overrides(c *gin.Context) {
	responseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	history, err := h.overrideService.History(c.Request.Context(), responseID)
	if err != nil {
		writeServiceError(c, "ResponseHandler.Overrides", err)
		return
	}
	writeOK(c, http.StatusOK, "Overrides retrieved successfully", history)
}

// CreateOverride 追加修正，操作人取自当前令牌。
func (h *ResponseHandler) CreateOverride(c *gin.Context) {
	responseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid request body")
		return
	}

	override, err := h.overrideService.RecordOverride(c.Request.Context(), responseID, req.TagID,
		model.OverrideAction(req.Action), actorFromContext(c), req.Notes)
	if err != nil {
		writeServiceError(c, "ResponseHandler.CreateOverride", err)
		return
	}
	writeOK(c, http.StatusCreated, "Override recorded successfully", override)
}
