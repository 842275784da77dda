package repository

import (
	"context"
	"fmt"
	"strings"

	"survey_insight_go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository 标签目录（dim_tags）的持久化接口。
// 标签只停用不删除，因此这里没有 Delete。
type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	// Upsert 按 TagID 插入或整行覆盖，用于写入内置标签目录
	Upsert(ctx context.Context, tag *model.Tag) error
	FindAll(ctx context.Context) ([]model.Tag, error)
	FindActive(ctx context.Context) ([]model.Tag, error)
	FindByID(ctx context.Context, id uint) (*model.Tag, error)
	// FindActiveByName 忽略大小写匹配有效标签名
	FindActiveByName(ctx context.Context, name string) (*model.Tag, error)
	FindPrimaryByName(ctx context.Context, name string) (*model.Tag, error)
	FindChild(ctx context.Context, parentID uint, name string) (*model.Tag, error)
	UpdateStatus(ctx context.Context, id uint, active bool) error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *model.Tag) error {
	if tag == nil {
		return fmt.Errorf("tag is nil")
	}
	if strings.TrimSpace(tag.TagName) == "" {
		return fmt.Errorf("tag name is required")
	}
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) Upsert(ctx context.Context, tag *model.Tag) error {
	if tag == nil {
		return fmt.Errorf("tag is nil")
	}
	if tag.TagID == 0 {
		return fmt.Errorf("tag id is required")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tag_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tag_key", "tag_name", "tag_category", "tag_priority", "tag_description",
				"tag_level", "parent_tag_id", "is_active", "updated_at",
			}),
		}).
		Create(tag).Error
}

func (r *tagRepository) FindAll(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Order("tag_id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) FindActive(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("tag_id ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) FindByID(ctx context.Context, id uint) (*model.Tag, error) {
	if id == 0 {
		return nil, fmt.Errorf("tag id is required")
	}

	var tag model.Tag
	if err := r.db.WithContext(ctx).Where("tag_id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindActiveByName(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is required")
	}

	var tag model.Tag
	if err := r.db.WithContext(ctx).
		Where("LOWER(tag_name) = ? AND is_active = ?", strings.ToLower(name), true).
		Order("tag_id ASC").
		First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindPrimaryByName(ctx context.Context, name string) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).
		Where("tag_name = ? AND tag_level = ?", name, model.TagLevelPrimary).
		Order("tag_id ASC").
		First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) FindChild(ctx context.Context, parentID uint, name string) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).
		Where("tag_name = ? AND parent_tag_id = ?", name, parentID).
		Order("tag_id ASC").
		First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// UpdateStatus 只更新 is_active。TagID 不存在时返回 gorm.ErrRecordNotFound。
// MySQL 在值未变化时 RowsAffected 也是 0，调用方应先比较当前状态。
func (r *tagRepository) UpdateStatus(ctx context.Context, id uint, active bool) error {
	if id == 0 {
		return fmt.Errorf("tag id is required")
	}

	tx := r.db.WithContext(ctx).Model(&model.Tag{}).
		Where("tag_id = ?", id).
		Update("is_active", active)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
