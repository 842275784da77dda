package repository

import (
	"context"
	"fmt"

	"survey_insight_go/internal/model"

	"gorm.io/gorm"
)

// CuratorRepository 维护可写入修正的账号。
type CuratorRepository interface {
	Create(ctx context.Context, curator *model.Curator) error
	FindByUsername(ctx context.Context, username string) (*model.Curator, error)
	FindByID(ctx context.Context, id uint) (*model.Curator, error)
}

type curatorRepository struct {
	db *gorm.DB
}

func NewCuratorRepository(db *gorm.DB) CuratorRepository {
	return &curatorRepository{db: db}
}

func (r *curatorRepository) Create(ctx context.Context, curator *model.Curator) error {
	if curator == nil {
		return fmt.Errorf("curator is nil")
	}
	return r.db.WithContext(ctx).Create(curator).Error
}

func (r *curatorRepository) FindByUsername(ctx context.Context, username string) (*model.Curator, error) {
	var curator model.Curator
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&curator).Error; err != nil {
		return nil, err
	}
	return &curator, nil
}

func (r *curatorRepository) FindByID(ctx context.Context, id uint) (*model.Curator, error) {
	var curator model.Curator
	if err := r.db.WithContext(ctx).First(&curator, id).Error; err != nil {
		return nil, err
	}
	return &curator, nil
}
