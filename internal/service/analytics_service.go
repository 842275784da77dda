package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/repository"
	"survey_insight_go/internal/resolver"

	"gorm.io/gorm"
)

// priorityAreaLimit 是重点领域返回的标签数。
const priorityAreaLimit = 10

// AnalyticsService 提供看板用的聚合统计，标签相关的数字全部基于有效标签。
type AnalyticsService interface {
	Overview(ctx context.Context) (*model.Analytics, error)
	QuestionDistribution(ctx context.Context, questionID uint) ([]model.TagDistribution, error)
}

type analyticsService struct {
	responseRepo repository.ResponseRepository
	tagRepo      repository.TagRepository
	resolver     resolver.Resolver
}

func NewAnalyticsService(responseRepo repository.ResponseRepository, tagRepo repository.TagRepository, r resolver.Resolver) AnalyticsService {
	return &analyticsService{responseRepo: responseRepo, tagRepo: tagRepo, resolver: r}
}

func (s *analyticsService) Overview(ctx context.Context) (*model.Analytics, error) {
	if s.responseRepo == nil || s.tagRepo == nil || s.resolver == nil {
		return nil, ErrInternal
	}

	stats, err := s.responseRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	roleCategories, err := s.responseRepo.CountByRoleCategory(ctx)
	if err != nil {
		return nil, err
	}
	questionTypes, err := s.responseRepo.CountByQuestionType(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	sets, err := s.resolver.EffectiveTagSets(ctx, model.ResponseFilter{})
	if err != nil {
		return nil, err
	}

	priority := rankTags(tags, resolver.Count(sets))
	if len(priority) > priorityAreaLimit {
		priority = priority[:priorityAreaLimit]
	}

	byRole, byTag := crossTabulate(sets, tagLabels(tags))
	return &model.Analytics{
		Overview:             *stats,
		RoleCategoryAnalysis: nonNilCounts(roleCategories),
		TagCategoryAnalysis:  countTagCategories(tags),
		QuestionTypeAnalysis: nonNilCounts(questionTypes),
		PriorityAreas:        priority,
		FilteredTagAnalysis:  byRole,
		TagRoleDistribution:  byTag,
	}, nil
}

// crossTabulate 统计 角色类别 × 标签 的响应数，两个方向各出一份。没有角色的响应不计入。
// 按标签出的那份以 labels 中的名字为键，labels 必须保证一个 TagID 对应唯一的键。
func crossTabulate(sets []resolver.ResolvedResponse, labels map[uint]string) (map[string][]model.TagResponseCount, map[string][]model.RoleResponseCount) {
	type cell struct {
		role  string
		tagID uint
	}
	counts := make(map[cell]int)
	names := make(map[uint]string)
	for _, set := range sets {
		role := set.Response.RoleCategory
		if role == "" {
			continue
		}
		for _, t := range set.Tags {
			counts[cell{role, t.TagID}]++
			names[t.TagID] = t.TagName
		}
	}

	byRole := make(map[string][]model.TagResponseCount)
	byTag := make(map[string][]model.RoleResponseCount)
	for c, n := range counts {
		byRole[c.role] = append(byRole[c.role], model.TagResponseCount{TagID: c.tagID, TagName: names[c.tagID], ResponseCount: n})
		label, ok := labels[c.tagID]
		if !ok {
			label = fmt.Sprintf("%s #%d", names[c.tagID], c.tagID)
		}
		byTag[label] = append(byTag[label], model.RoleResponseCount{RoleCategory: c.role, ResponseCount: n})
	}
	for _, list := range byRole {
		sort.Slice(list, func(i, j int) bool {
			if list[i].ResponseCount != list[j].ResponseCount {
				return list[i].ResponseCount > list[j].ResponseCount
			}
			return list[i].TagName < list[j].TagName
		})
	}
	for _, list := range byTag {
		sort.Slice(list, func(i, j int) bool {
			if list[i].ResponseCount != list[j].ResponseCount {
				return list[i].ResponseCount > list[j].ResponseCount
			}
			return list[i].RoleCategory < list[j].RoleCategory
		})
	}
	return byRole, byTag
}

// tagLabels 给每个标签一个唯一的展示名：重名的子标签加上父标签名，仍冲突时再加 TagID。
func tagLabels(tags []model.Tag) map[uint]string {
	byID := make(map[uint]model.Tag, len(tags))
	seen := make(map[string]int, len(tags))
	for _, t := range tags {
		byID[t.TagID] = t
		seen[t.TagName]++
	}

	labels := make(map[uint]string, len(tags))
	taken := make(map[string]int, len(tags))
	for _, t := range tags {
		label := t.TagName
		if seen[t.TagName] > 1 {
			if t.ParentTagID != nil {
				if parent, ok := byID[*t.ParentTagID]; ok {
					label = parent.TagName + " > " + t.TagName
				}
			}
		}
		labels[t.TagID] = label
		taken[label]++
	}
	for id, label := range labels {
		if taken[label] > 1 {
			labels[id] = fmt.Sprintf("%s #%d", label, id)
		}
	}
	return labels
}

func countTagCategories(tags []model.Tag) []model.CategoryCount {
	counts := make(map[string]int64)
	for _, t := range tags {
		counts[t.TagCategory]++
	}
	out := make([]model.CategoryCount, 0, len(counts))
	for category, n := range counts {
		out = append(out, model.CategoryCount{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func nonNilCounts(in []model.CategoryCount) []model.CategoryCount {
	if in == nil {
		return []model.CategoryCount{}
	}
	return in
}

// QuestionDistribution 返回某问题下每个有效标签覆盖的响应数，只包含计数大于 0 的标签。
func (s *analyticsService) QuestionDistribution(ctx context.Context, questionID uint) ([]model.TagDistribution, error) {
	if s.responseRepo == nil || s.tagRepo == nil || s.resolver == nil {
		return nil, ErrInternal
	}
	if questionID == 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.responseRepo.FindQuestion(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	counts, err := s.resolver.EffectiveTagCounts(ctx, model.ResponseFilter{QuestionID: &questionID})
	if err != nil {
		return nil, err
	}
	tags, err := s.tagRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.TagDistribution, 0)
	for _, tc := range rankTags(tags, counts) {
		if tc.ResponseCount == 0 {
			break
		}
		out = append(out, model.TagDistribution{
			TagID:       tc.TagID,
			TagName:     tc.TagName,
			TagCategory: tc.TagCategory,
			TagCount:    tc.ResponseCount,
		})
	}
	return out, nil
}
