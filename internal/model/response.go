package model

// Response 对应 fact_survey_responses 表：一个受访者 × 一个问题 产生一行。
// 由外部建模流水线生成，本服务只读。
type Response struct {
	ResponseID           uint   `gorm:"primaryKey" json:"ResponseID"`
	SurveyResponseNumber int    `gorm:"index:idx_fact_response_key" json:"SurveyResponseNumber"`
	QuestionID           uint   `gorm:"index:idx_fact_response_key" json:"QuestionID"`
	RoleID               *uint  `gorm:"index" json:"RoleID"`
	ResponseText         string `gorm:"type:text" json:"ResponseText"`
	ResponseLength       int    `json:"ResponseLength"`
	WordCount            int    `json:"WordCount"`
	HasResponse          bool   `gorm:"index" json:"HasResponse"`
}

func (Response) TableName() string {
	return "fact_survey_responses"
}

// Question 对应 dim_questions 表。
type Question struct {
	QuestionID    uint   `gorm:"primaryKey" json:"QuestionID"`
	QuestionText  string `gorm:"type:text" json:"QuestionText"`
	QuestionShort string `gorm:"type:varchar(255)" json:"QuestionShort"`
	QuestionType  string `gorm:"type:varchar(50)" json:"QuestionType"`
}

func (Question) TableName() string {
	return "dim_questions"
}

// Role 对应 dim_roles 表。
type Role struct {
	RoleID           uint   `gorm:"primaryKey" json:"RoleID"`
	RoleStandardized string `gorm:"type:varchar(150)" json:"RoleStandardized"`
	RoleCategory     string `gorm:"type:varchar(100);index" json:"RoleCategory"`
	RoleLevel        string `gorm:"type:varchar(50)" json:"RoleLevel"`
}

func (Role) TableName() string {
	return "dim_roles"
}

// ResponseKey 是解析有效标签所需的最小响应投影。
// 人工修正按 (SurveyResponseNumber, QuestionID) 关联，因为 ResponseID 每次重建都会重新编号。
type ResponseKey struct {
	ResponseID           uint   `json:"ResponseID"`
	SurveyResponseNumber int    `json:"SurveyResponseNumber"`
	QuestionID           uint   `json:"QuestionID"`
	RoleCategory         string `json:"RoleCategory"`
}

// ResponseDetail 是对外展示用的响应行（带问题与角色信息）。
type ResponseDetail struct {
	ResponseID           uint   `json:"ResponseID"`
	SurveyResponseNumber int    `json:"SurveyResponseNumber"`
	ResponseText         string `json:"ResponseText"`
	QuestionID           uint   `json:"QuestionID"`
	QuestionText         string `json:"QuestionText"`
	QuestionShort        string `json:"QuestionShort"`
	RoleName             string `json:"RoleName"`
	RoleCategory         string `json:"RoleCategory"`
}

// ResponseFilter 限定聚合查询覆盖的响应范围，零值表示全部响应。
type ResponseFilter struct {
	ResponseID   *uint
	QuestionID   *uint
	RoleCategory string
	// ContentOnly 只保留 HasResponse 的响应
	ContentOnly bool
}

// TagRef 是响应行里内嵌的精简标签。
type TagRef struct {
	TagID       uint   `json:"TagID"`
	TagName     string `json:"TagName"`
	TagCategory string `json:"TagCategory"`
}

// NewTagRefs 把完整标签裁剪成 TagRef，保持原顺序。
func NewTagRefs(tags []Tag) []TagRef {
	refs := make([]TagRef, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, TagRef{TagID: t.TagID, TagName: t.TagName, TagCategory: t.TagCategory})
	}
	return refs
}

// TaggedResponse 是带有效标签的响应行。
type TaggedResponse struct {
	ResponseDetail
	Tags []TagRef `json:"Tags"`
}

// QuestionResponses 是按问题分组的响应列表，对应 /api/responses。
type QuestionResponses struct {
	QuestionID    uint             `json:"QuestionID"`
	QuestionText  string           `json:"QuestionText"`
	QuestionShort string           `json:"QuestionShort"`
	Responses     []TaggedResponse `json:"responses"`
}
