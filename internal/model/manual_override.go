package model

import "time"

// OverrideAction 是人工修正的动作。
type OverrideAction string

const (
	OverrideAdd    OverrideAction = "ADD"
	OverrideRemove OverrideAction = "REMOVE"
)

// Valid 判断动作是否为 ADD / REMOVE 之一。
func (a OverrideAction) Valid() bool {
	return a == OverrideAdd || a == OverrideRemove
}

// ManualOverride 对应 manual_tag_overrides 表，是只追加的修正日志。
// 同一 (响应, 标签) 可以有多行，AppliedDate 最新的一行生效，时间相同时 OverrideID 大者生效。
type ManualOverride struct {
	OverrideID           uint           `gorm:"primaryKey;autoIncrement" json:"OverrideID"`
	SurveyResponseNumber int            `gorm:"not null;index:idx_manual_overrides_response" json:"SurveyResponseNumber"`
	QuestionID           uint           `gorm:"not null;index:idx_manual_overrides_response" json:"QuestionID"`
	TagID                uint           `gorm:"not null;index" json:"TagID"`
	Action               OverrideAction `gorm:"type:varchar(10);not null" json:"Action"`
	AppliedBy            string         `gorm:"type:varchar(100);not null" json:"AppliedBy"`
	AppliedDate          time.Time      `gorm:"not null" json:"AppliedDate"`
	Notes                string         `gorm:"type:text" json:"Notes"`
	IsActive             bool           `gorm:"not null" json:"IsActive"`
}

func (ManualOverride) TableName() string {
	return "manual_tag_overrides"
}

// OverrideState 是单个 (响应, 标签) 的修正状态，完全由最新一条有效修正决定。
type OverrideState string

const (
	OverrideStateNone    OverrideState = "NONE"
	OverrideStateAdded   OverrideState = "ADDED"
	OverrideStateRemoved OverrideState = "REMOVED"
)

// StateOf 根据最新一条修正计算状态，nil 表示从未修正。
func StateOf(latest *ManualOverride) OverrideState {
	if latest == nil {
		return OverrideStateNone
	}
	switch latest.Action {
	case OverrideAdd:
		return OverrideStateAdded
	case OverrideRemove:
		return OverrideStateRemoved
	default:
		return OverrideStateNone
	}
}
