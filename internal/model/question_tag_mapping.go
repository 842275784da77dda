package model

import "time"

// AssignmentType 描述问题级标签映射的生效方式。
// 只有 AUTOMATIC 参与有效标签解析，CONDITIONAL / SUGGESTED 仅作为元数据保留。
type AssignmentType string

const (
	AssignmentAutomatic   AssignmentType = "AUTOMATIC"
	AssignmentConditional AssignmentType = "CONDITIONAL"
	AssignmentSuggested   AssignmentType = "SUGGESTED"
)

// Valid 判断取值是否在枚举范围内。
func (a AssignmentType) Valid() bool {
	switch a {
	case AssignmentAutomatic, AssignmentConditional, AssignmentSuggested:
		return true
	}
	return false
}

// QuestionTagMapping 对应 question_tag_mappings 表：把一个标签批量赋给某问题下的全部响应。
type QuestionTagMapping struct {
	MappingID      uint           `gorm:"primaryKey;autoIncrement" json:"MappingID"`
	QuestionID     uint           `gorm:"not null;uniqueIndex:idx_qtm_question_tag" json:"QuestionID"`
	TagID          uint           `gorm:"not null;uniqueIndex:idx_qtm_question_tag" json:"TagID"`
	AssignmentType AssignmentType `gorm:"type:varchar(20);not null" json:"AssignmentType"`
	AppliedBy      string         `gorm:"type:varchar(100);not null" json:"AppliedBy"`
	AppliedDate    time.Time      `gorm:"not null" json:"AppliedDate"`
	Notes          string         `gorm:"type:text" json:"Notes"`
	IsActive       bool           `gorm:"not null" json:"IsActive"`
}

func (QuestionTagMapping) TableName() string {
	return "question_tag_mappings"
}
