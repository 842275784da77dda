package model

import "time"

// 标签层级：1 为一级标签，2 为挂在一级标签下的子标签，层级深度固定为 2。
const (
	TagLevelPrimary = 1
	TagLevelSub     = 2
)

// Tag 对应 dim_tags 表，表示一个主题标签。
// 标签只会被停用（IsActive=false），不会被物理删除；停用后在有效标签结果中不可见。
type Tag struct {
	TagID          uint      `gorm:"primaryKey" json:"TagID"`
	TagKey         string    `gorm:"type:varchar(100);index" json:"TagKey"`
	TagName        string    `gorm:"type:varchar(150);not null" json:"TagName"`
	TagCategory    string    `gorm:"type:varchar(100);index" json:"TagCategory"`
	TagPriority    string    `gorm:"type:varchar(20)" json:"TagPriority"`
	TagDescription string    `gorm:"type:varchar(255)" json:"TagDescription"`
	TagLevel       int       `gorm:"not null" json:"TagLevel"`
	ParentTagID    *uint     `gorm:"index" json:"ParentTagID"`
	IsActive       bool      `gorm:"not null" json:"IsActive"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"-"`
}

// TableName 指定 GORM 使用的表名
func (Tag) TableName() string {
	return "dim_tags"
}

// TagNode 是两级标签树的节点，用于 /api/tags/tree。
type TagNode struct {
	TagID       uint       `json:"TagID"`
	TagKey      string     `json:"TagKey"`
	TagName     string     `json:"TagName"`
	TagCategory string     `json:"TagCategory"`
	TagLevel    int        `json:"TagLevel"`
	ParentTagID *uint      `json:"ParentTagID"`
	Children    []*TagNode `json:"Children"`
}

// TagCount 是某个标签的有效响应计数。
type TagCount struct {
	Tag
	ResponseCount int `json:"ResponseCount"`
}
