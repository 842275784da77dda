package repository

import (
	"context"
	"fmt"
	"time"

	"survey_insight_go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuestionTagMappingRepository 问题级标签映射（question_tag_mappings）的持久化接口。
// 每个 (QuestionID, TagID) 最多一行，由唯一索引 idx_qtm_question_tag 保证。
type QuestionTagMappingRepository interface {
	// FindActiveAutomatic 返回所有参与有效标签解析的映射（AUTOMATIC 且有效）
	FindActiveAutomatic(ctx context.Context) ([]model.QuestionTagMapping, error)
	FindByQuestion(ctx context.Context, questionID uint) ([]model.QuestionTagMapping, error)
	// Upsert 按 (QuestionID, TagID) 插入或覆盖
	Upsert(ctx context.Context, mapping *model.QuestionTagMapping) error
	// Deactivate 软删除一条有效映射，不存在有效行时返回 gorm.ErrRecordNotFound
	Deactivate(ctx context.Context, questionID, tagID uint, appliedBy string, at time.Time) error
}

type questionTagMappingRepository struct {
	db *gorm.DB
}

func NewQuestionTagMappingRepository(db *gorm.DB) QuestionTagMappingRepository {
	return &questionTagMappingRepository{db: db}
}

func (r *questionTagMappingRepository) FindActiveAutomatic(ctx context.Context) ([]model.QuestionTagMapping, error) {
	var mappings []model.QuestionTagMapping
	if err := r.db.WithContext(ctx).
		Where("assignment_type = ? AND is_active = ?", model.AssignmentAutomatic, true).
		Order("mapping_id ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *questionTagMappingRepository) FindByQuestion(ctx context.Context, questionID uint) ([]model.QuestionTagMapping, error) {
	if questionID == 0 {
		return nil, fmt.Errorf("question id is required")
	}

	var mappings []model.QuestionTagMapping
	if err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("mapping_id ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *questionTagMappingRepository) Upsert(ctx context.Context, mapping *model.QuestionTagMapping) error {
	if mapping == nil {
		return fmt.Errorf("mapping is nil")
	}
	if mapping.QuestionID == 0 || mapping.TagID == 0 {
		return fmt.Errorf("question id and tag id are required")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question_id"}, {Name: "tag_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"assignment_type", "applied_by", "applied_date", "notes", "is_active"}),
		}).
		Create(mapping).Error
}

func (r *questionTagMappingRepository) Deactivate(ctx context.Context, questionID, tagID uint, appliedBy string, at time.Time) error {
	if questionID == 0 || tagID == 0 {
		return fmt.Errorf("question id and tag id are required")
	}

	tx := r.db.WithContext(ctx).Model(&model.QuestionTagMapping{}).
		Where("question_id = ? AND tag_id = ? AND is_active = ?", questionID, tagID, true).
		Updates(map[string]interface{}{
			"is_active":    false,
			"applied_by":   appliedBy,
			"applied_date": at,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
