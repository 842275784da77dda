package model

// AlgorithmicTagLink 对应 bridge_response_tags 表：打标算法在流水线构建时写入的 (响应, 标签) 对。
// 只会整表重建，不做单行修改。
type AlgorithmicTagLink struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	ResponseID uint   `gorm:"not null;index" json:"ResponseID"`
	TagID      uint   `gorm:"not null;index" json:"TagID"`
	TagKey     string `gorm:"type:varchar(100)" json:"TagKey"`
}

func (AlgorithmicTagLink) TableName() string {
	return "bridge_response_tags"
}
