package handler

import (
	"net/http"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/service"

	"github.com/gin-gonic/gin"
)

// QuestionHandler 负责问题维度的标签分布和问题级映射。
type QuestionHandler struct {
	analyticsService service.AnalyticsService
	mappingService   service.MappingService
}

func NewQuestionHandler(analyticsService service.AnalyticsService, mappingService service.MappingService) *QuestionHandler {
	return &QuestionHandler{analyticsService: analyticsService, mappingService: mappingService}
}

// UpsertMappingRequest 是新建或覆盖问题映射的请求体，AssignmentType 缺省为 AUTOMATIC。
type UpsertMappingRequest struct {
	TagID          uint   `json:"tagId" binding:"required"`
	AssignmentType string `json:"assignmentType"`
	Notes          string `json:"notes"`
}

func (h *QuestionHandler) TagDistribution(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	dist, err := h.analyticsService.QuestionDistribution(c.Request.Context(), questionID)
	if err != nil {
		writeServiceError(c, "QuestionHandler.TagDistribution", err)
		return
	}
	writeOK(c, http.StatusOK, "Tag distribution retrieved successfully", dist)
}

func (h *QuestionHandler) ListMappings(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	mappings, err := h.mappingService.List(c.Request.Context(), questionID)
	if err != nil {
		writeServiceError(c, "QuestionHandler.ListMappings", err)
		return
	}
	writeOK(c, http.StatusOK, "Question tag mappings retrieved successfully", mappings)
}

func (h *QuestionHandler) UpsertMapping(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpsertMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid request body")
		return
	}

	mapping, err := h.mappingService.Upsert(c.Request.Context(), questionID, req.TagID,
		model.AssignmentType(req.AssignmentType), actorFromContext(c), req.Notes)
	if err != nil {
		writeServiceError(c, "QuestionHandler.UpsertMapping", err)
		return
	}
	writeOK(c, http.StatusOK, "Question tag mapping saved successfully", mapping)
}

// DeleteMapping 软删除映射，历史行保留。
func (h *QuestionHandler) DeleteMapping(c *gin.Context) {
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tagID, ok := parseIDParam(c, "tagId")
	if !ok {
		return
	}
	if err := h.mappingService.Deactivate(c.Request.Context(), questionID, tagID, actorFromContext(c)); err != nil {
		writeServiceError(c, "QuestionHandler.DeleteMapping", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Question tag mapping deactivated successfully",
	})
}
