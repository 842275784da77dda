package model

import "time"

const (
	CuratorRoleCurator = "CURATOR"
	CuratorRoleAdmin   = "ADMIN"
)

// Curator 对应 curators 表，是可以写入人工修正和问题映射的账号。
type Curator struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Curator) TableName() string {
	return "curators"
}
