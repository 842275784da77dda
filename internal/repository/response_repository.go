package repository

import (
	"context"
	"fmt"

	"survey_insight_go/internal/model"

	"gorm.io/gorm"
)

// ResponseRepository 读取外部流水线生成的响应事实表及其维度表，本服务不写入这些表。
type ResponseRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Response, error)
	// FindKeys 返回解析有效标签所需的最小投影，按 response_id 升序
	FindKeys(ctx context.Context, filter model.ResponseFilter) ([]model.ResponseKey, error)
	// FindDetails 返回带问题与角色信息的展示行
	FindDetails(ctx context.Context, filter model.ResponseFilter) ([]model.ResponseDetail, error)
	// FindForTagging 返回所有有内容的响应，供重新打标使用
	FindForTagging(ctx context.Context) ([]model.Response, error)
	FindQuestion(ctx context.Context, id uint) (*model.Question, error)
	Stats(ctx context.Context) (*model.ResponseStats, error)
	CountByRoleCategory(ctx context.Context) ([]model.CategoryCount, error)
	CountByQuestionType(ctx context.Context) ([]model.CategoryCount, error)
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) FindByID(ctx context.Context, id uint) (*model.Response, error) {
	if id == 0 {
		return nil, fmt.Errorf("response id is required")
	}

	var resp model.Response
	if err := r.db.WithContext(ctx).Where("response_id = ?", id).First(&resp).Error; err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepository) FindKeys(ctx context.Context, filter model.ResponseFilter) ([]model.ResponseKey, error) {
	tx := r.db.WithContext(ctx).
		Table("fact_survey_responses AS r").
		Select("r.response_id, r.survey_response_number, r.question_id, COALESCE(ro.role_category, '') AS role_category").
		Joins(roleJoin)
	tx = applyResponseFilter(tx, filter)

	var keys []model.ResponseKey
	if err := tx.Order("r.response_id ASC").Scan(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *responseRepository) FindDetails(ctx context.Context, filter model.ResponseFilter) ([]model.ResponseDetail, error) {
	tx := r.db.WithContext(ctx).
		Table("fact_survey_responses AS r").
		Select(`r.response_id, r.survey_response_number, r.response_text, r.question_id,
			COALESCE(q.question_text, '') AS question_text, COALESCE(q.question_short, '') AS question_short,
			COALESCE(ro.role_standardized, '') AS role_name, COALESCE(ro.role_category, '') AS role_category`).
		Joins("LEFT JOIN dim_questions AS q ON q.question_id = r.question_id").
		Joins(roleJoin)
	tx = applyResponseFilter(tx, filter)

	var rows []model.ResponseDetail
	if err := tx.Order("r.question_id ASC, r.response_id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *responseRepository) FindForTagging(ctx context.Context) ([]model.Response, error) {
	var responses []model.Response
	if err := r.db.WithContext(ctx).
		Where("has_response = ?", true).
		Order("response_id ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) FindQuestion(ctx context.Context, id uint) (*model.Question, error) {
	if id == 0 {
		return nil, fmt.Errorf("question id is required")
	}

	var q model.Question
	if err := r.db.WithContext(ctx).Where("question_id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *responseRepository) Stats(ctx context.Context) (*model.ResponseStats, error) {
	var stats model.ResponseStats
	err := r.db.WithContext(ctx).
		Model(&model.Response{}).
		Select(`COUNT(*) AS total_responses,
			COUNT(DISTINCT survey_response_number) AS unique_respondents,
			COALESCE(AVG(CASE WHEN has_response THEN word_count END), 0) AS avg_word_count,
			COALESCE(AVG(CASE WHEN has_response THEN response_length END), 0) AS avg_response_length`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CountByRoleCategory 统计各角色类别的响应行数，没有角色的响应不计入。
func (r *responseRepository) CountByRoleCategory(ctx context.Context) ([]model.CategoryCount, error) {
	var rows []model.CategoryCount
	err := r.db.WithContext(ctx).
		Table("fact_survey_responses AS r").
		Select("ro.role_category AS category, COUNT(*) AS count").
		Joins("JOIN dim_roles AS ro ON ro.role_id = r.role_id").
		Group("ro.role_category").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *responseRepository) CountByQuestionType(ctx context.Context) ([]model.CategoryCount, error) {
	var rows []model.CategoryCount
	err := r.db.WithContext(ctx).
		Model(&model.Question{}).
		Select("question_type AS category, COUNT(*) AS count").
		Group("question_type").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
