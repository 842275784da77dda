package repository

import (
	"context"

	"survey_insight_go/internal/model"

	"gorm.io/gorm"
)

// replaceBatchSize 重建 bridge_response_tags 时每批插入的行数。
const replaceBatchSize = 500

// AlgorithmicTagRepository 打标算法结果（bridge_response_tags）的持久化接口。
type AlgorithmicTagRepository interface {
	// FindByFilter 返回落在过滤范围内的响应的所有算法标签
	FindByFilter(ctx context.Context, filter model.ResponseFilter) ([]model.AlgorithmicTagLink, error)
	// ReplaceAll 在一个事务里清空并重写整张表
	ReplaceAll(ctx context.Context, links []model.AlgorithmicTagLink) error
}

type algorithmicTagRepository struct {
	db *gorm.DB
}

func NewAlgorithmicTagRepository(db *gorm.DB) AlgorithmicTagRepository {
	return &algorithmicTagRepository{db: db}
}

func (r *algorithmicTagRepository) FindByFilter(ctx context.Context, filter model.ResponseFilter) ([]model.AlgorithmicTagLink, error) {
	tx := r.db.WithContext(ctx).
		Table("bridge_response_tags AS b").
		Select("b.id, b.response_id, b.tag_id, b.tag_key").
		Joins("JOIN fact_survey_responses AS r ON r.response_id = b.response_id").
		Joins(roleJoin)
	tx = applyResponseFilter(tx, filter)

	var links []model.AlgorithmicTagLink
	if err := tx.Order("b.response_id ASC, b.id ASC").Scan(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// ReplaceAll 先删后插，失败整体回滚，读方不会看到一半的结果。
func (r *algorithmicTagRepository) ReplaceAll(ctx context.Context, links []model.AlgorithmicTagLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.AlgorithmicTagLink{}).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		return tx.CreateInBatches(links, replaceBatchSize).Error
	})
}
