package repository

import (
	"context"
	"fmt"

	"survey_insight_go/internal/model"

	"gorm.io/gorm"
)

// ManualOverrideRepository 人工修正日志（manual_tag_overrides）的持久化接口。
// 日志只追加：没有 Update / Delete。
type ManualOverrideRepository interface {
	Create(ctx context.Context, override *model.ManualOverride) error
	// FindByResponseKey 返回某条响应的全部修正（含无效行），最新的在前
	FindByResponseKey(ctx context.Context, surveyResponseNumber int, questionID uint) ([]model.ManualOverride, error)
	// FindActiveByFilter 返回过滤范围内响应的所有有效修正
	FindActiveByFilter(ctx context.Context, filter model.ResponseFilter) ([]model.ManualOverride, error)
}

type manualOverrideRepository struct {
	db *gorm.DB
}

func NewManualOverrideRepository(db *gorm.DB) ManualOverrideRepository {
	return &manualOverrideRepository{db: db}
}

func (r *manualOverrideRepository) Create(ctx context.Context, override *model.ManualOverride) error {
	if override == nil {
		return fmt.Errorf("override is nil")
	}
	if override.QuestionID == 0 || override.TagID == 0 {
		return fmt.Errorf("question id and tag id are required")
	}
	return r.db.WithContext(ctx).Create(override).Error
}

func (r *manualOverrideRepository) FindByResponseKey(ctx context.Context, surveyResponseNumber int, questionID uint) ([]model.ManualOverride, error) {
	var overrides []model.ManualOverride
	if err := r.db.WithContext(ctx).
		Where("survey_response_number = ? AND question_id = ?", surveyResponseNumber, questionID).
		Order("applied_date DESC, override_id DESC").
		Find(&overrides).Error; err != nil {
		return nil, err
	}
	return overrides, nil
}

// FindActiveByFilter 通过 (survey_response_number, question_id) 关联到响应表再套用过滤条件。
// 同一复合键在响应表中出现多次时会返回重复行，由解析层按 OverrideID 去重。
func (r *manualOverrideRepository) FindActiveByFilter(ctx context.Context, filter model.ResponseFilter) ([]model.ManualOverride, error) {
	tx := r.db.WithContext(ctx).
		Table("manual_tag_overrides AS o").
		Select("o.*").
		Joins("JOIN fact_survey_responses AS r ON r.survey_response_number = o.survey_response_number AND r.question_id = o.question_id").
		Joins(roleJoin).
		Where("o.is_active = ?", true)
	tx = applyResponseFilter(tx, filter)

	var overrides []model.ManualOverride
	if err := tx.Order("o.override_id ASC").Scan(&overrides).Error; err != nil {
		return nil, err
	}
	return overrides, nil
}
