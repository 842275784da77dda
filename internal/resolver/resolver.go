package resolver

import (
	"context"
	"errors"
	"fmt"

	"survey_insight_go/internal/model"
)

// ErrResponseNotFound 表示请求的响应不存在。
var ErrResponseNotFound = errors.New("response not found")

// Resolver 是所有读接口计算有效标签的唯一入口。
type Resolver interface {
	// EffectiveTags 返回单条响应的有效标签，按 TagLevel、TagName 排序
	EffectiveTags(ctx context.Context, responseID uint) ([]model.Tag, error)
	// EffectiveTagSets 返回过滤范围内每条响应的有效标签
	EffectiveTagSets(ctx context.Context, filter model.ResponseFilter) ([]ResolvedResponse, error)
	// EffectiveTagCounts 返回 TagID -> 不同响应数
	EffectiveTagCounts(ctx context.Context, filter model.ResponseFilter) (map[uint]int, error)
}

type ResponseSource interface {
	FindKeys(ctx context.Context, filter model.ResponseFilter) ([]model.ResponseKey, error)
}

type AlgorithmicSource interface {
	FindByFilter(ctx context.Context, filter model.ResponseFilter) ([]model.AlgorithmicTagLink, error)
}

type MappingSource interface {
	FindActiveAutomatic(ctx context.Context) ([]model.QuestionTagMapping, error)
}

type OverrideSource interface {
	FindActiveByFilter(ctx context.Context, filter model.ResponseFilter) ([]model.ManualOverride, error)
}

type TagSource interface {
	FindActive(ctx context.Context) ([]model.Tag, error)
}

// Sources 聚合三层标签来源和标签目录，repository 包中的实现都满足这些接口。
type Sources struct {
	Responses   ResponseSource
	Algorithmic AlgorithmicSource
	Mappings    MappingSource
	Overrides   OverrideSource
	Tags        TagSource
}

type storeResolver struct {
	src Sources
}

// New 创建基于存储的 Resolver。
func New(src Sources) Resolver {
	return &storeResolver{src: src}
}

func (r *storeResolver) EffectiveTags(ctx context.Context, responseID uint) ([]model.Tag, error) {
	sets, err := r.EffectiveTagSets(ctx, model.ResponseFilter{ResponseID: &responseID})
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, ErrResponseNotFound
	}
	return sets[0].Tags, nil
}

// EffectiveTagSets 每层只读取一次，整个调用基于同一组快照计算。
func (r *storeResolver) EffectiveTagSets(ctx context.Context, filter model.ResponseFilter) ([]ResolvedResponse, error) {
	keys, err := r.src.Responses.FindKeys(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	if len(keys) == 0 {
		return []ResolvedResponse{}, nil
	}

	var layers Layers
	if layers.Algorithmic, err = r.src.Algorithmic.FindByFilter(ctx, filter); err != nil {
		return nil, fmt.Errorf("load algorithmic tags: %w", err)
	}
	if layers.Mappings, err = r.src.Mappings.FindActiveAutomatic(ctx); err != nil {
		return nil, fmt.Errorf("load question mappings: %w", err)
	}
	if layers.Overrides, err = r.src.Overrides.FindActiveByFilter(ctx, filter); err != nil {
		return nil, fmt.Errorf("load manual overrides: %w", err)
	}
	if layers.Tags, err = r.src.Tags.FindActive(ctx); err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	return Resolve(keys, layers), nil
}

func (r *storeResolver) EffectiveTagCounts(ctx context.Context, filter model.ResponseFilter) (map[uint]int, error) {
	sets, err := r.EffectiveTagSets(ctx, filter)
	if err != nil {
		return nil, err
	}
	return Count(sets), nil
}
