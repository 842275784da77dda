package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 汇总所有 HTTP handler。
type Handlers struct {
	Auth      *AuthHandler
	Tag       *TagHandler
	Question  *QuestionHandler
	Response  *ResponseHandler
	Analytics *AnalyticsHandler
}

// RegisterRoutes 挂载全部路由。读接口公开；写接口要求 auth，标签启停额外要求 admin。
func RegisterRoutes(r *gin.Engine, h Handlers, auth, admin gin.HandlerFunc) {
	r.GET("/health", h.Analytics.Health)

	api := r.Group("/api")
	api.POST("/auth/login", h.Auth.Login)

	tags := api.Group("/tags")
	tags.GET("", h.Tag.List)
	tags.GET("/tree", h.Tag.GetTree)
	tags.GET("/:id/responses", h.Tag.Responses)
	tags.PATCH("/:id/status", auth, admin, h.Tag.SetStatus)

	questions := api.Group("/questions")
	questions.GET("/:id/tag-distribution", h.Question.TagDistribution)
	questions.GET("/:id/tag-mappings", h.Question.ListMappings)
	questions.POST("/:id/tag-mappings", auth, h.Question.UpsertMapping)
	questions.DELETE("/:id/tag-mappings/:tagId", auth, h.Question.DeleteMapping)

	responses := api.Group("/responses")
	responses.GET("", h.Response.List)
	responses.GET("/:id/tags", h.Response.Tags)
	responses.GET("/:id/overrides", h.Response.Overrides)
	responses.POST("/:id/overrides", auth, h.Response.CreateOverride)

	api.GET("/analytics", h.Analytics.Overview)
	api.POST("/tagging/preview", h.Analytics.Preview)
}
