package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/repository"
	"survey_insight_go/internal/resolver"
	"survey_insight_go/internal/taxonomy"
	"survey_insight_go/pkg/log"

	"gorm.io/gorm"
)

// 层级导入新建标签时使用的默认类别。
const (
	importedPrimaryCategory = "New Category"
	importedSubCategory     = "Sub Category"
)

// HierarchyRow 是层级导入文件中的一行：一级标签名 + 可选的子标签名。
type HierarchyRow struct {
	Primary string
	Subtag  string
}

// HierarchyImportResult 汇总一次层级导入。
type HierarchyImportResult struct {
	PrimaryCreated int `json:"primaryCreated"`
	PrimaryExisted int `json:"primaryExisted"`
	SubCreated     int `json:"subCreated"`
	SubExisted     int `json:"subExisted"`
	Skipped        int `json:"skipped"`
}

// TagService 封装标签目录相关的读写。所有计数都来自 Resolver，而不是直接统计算法标签表。
type TagService interface {
	ListWithCounts(ctx context.Context) ([]model.TagCount, error)
	GetTree(ctx context.Context) ([]*model.TagNode, error)
	FindByID(ctx context.Context, id uint) (*model.Tag, error)
	SetStatus(ctx context.Context, id uint, active bool) (*model.Tag, error)
	TaggedResponses(ctx context.Context, tagID uint) ([]model.TaggedResponse, error)
	SeedCanonical(ctx context.Context) (int, error)
	ImportHierarchy(ctx context.Context, rows []HierarchyRow) (*HierarchyImportResult, error)
}

type tagService struct {
	tagRepo      repository.TagRepository
	responseRepo repository.ResponseRepository
	resolver     resolver.Resolver
	cache        Invalidator
}

func NewTagService(tagRepo repository.TagRepository, responseRepo repository.ResponseRepository, r resolver.Resolver, cache Invalidator) TagService {
	return &tagService{tagRepo: tagRepo, responseRepo: responseRepo, resolver: r, cache: cache}
}

// ListWithCounts 返回有效标签及其有效响应数，按计数降序，同数按 TagID 升序。
func (s *tagService) ListWithCounts(ctx context.Context) ([]model.TagCount, error) {
	if s.tagRepo == nil || s.resolver == nil {
		return nil, ErrInternal
	}

	tags, err := s.tagRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.resolver.EffectiveTagCounts(ctx, model.ResponseFilter{})
	if err != nil {
		return nil, err
	}
	return rankTags(tags, counts), nil
}

func rankTags(tags []model.Tag, counts map[uint]int) []model.TagCount {
	out := make([]model.TagCount, 0, len(tags))
	for _, t := range tags {
		out = append(out, model.TagCount{Tag: t, ResponseCount: counts[t.TagID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ResponseCount != out[j].ResponseCount {
			return out[i].ResponseCount > out[j].ResponseCount
		}
		return out[i].TagID < out[j].TagID
	})
	return out
}

// GetTree 构建两级标签树。
// 两遍扫描：先建全部节点，再按 ParentTagID 挂载；父节点不存在或已停用的子标签作为根节点返回。
func (s *tagService) GetTree(ctx context.Context) ([]*model.TagNode, error) {
	if s.tagRepo == nil {
		return nil, ErrInternal
	}

	tags, err := s.tagRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*model.TagNode, len(tags))
	for _, tag := range tags {
		nodes[tag.TagID] = &model.TagNode{
			TagID:       tag.TagID,
			TagKey:      tag.TagKey,
			TagName:     tag.TagName,
			TagCategory: tag.TagCategory,
			TagLevel:    tag.TagLevel,
			ParentTagID: tag.ParentTagID,
			Children:    []*model.TagNode{},
		}
	}

	tree := make([]*model.TagNode, 0)
	for _, tag := range tags {
		node := nodes[tag.TagID]
		if tag.ParentTagID != nil {
			if parent, ok := nodes[*tag.ParentTagID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		tree = append(tree, node)
	}
	return tree, nil
}

func (s *tagService) FindByID(ctx context.Context, id uint) (*model.Tag, error) {
	if s.tagRepo == nil {
		return nil, ErrInternal
	}
	if id == 0 {
		return nil, ErrInvalidInput
	}

	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	if tag == nil {
		return nil, ErrTagNotFound
	}
	return tag, nil
}

// SetStatus 启用或停用标签。标签从不物理删除。
func (s *tagService) SetStatus(ctx context.Context, id uint, active bool) (*model.Tag, error) {
	tag, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag.IsActive == active {
		return tag, nil
	}

	if err := s.tagRepo.UpdateStatus(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	tag.IsActive = active
	invalidate(ctx, s.cache, "TagService.SetStatus")
	log.Infof("tag %d (%s) active=%t", tag.TagID, tag.TagName, active)
	return tag, nil
}

// TaggedResponses 返回有效标签集合包含 tagID 的响应，每条带完整有效标签，按调查编号排序。
func (s *tagService) TaggedResponses(ctx context.Context, tagID uint) ([]model.TaggedResponse, error) {
	if s.responseRepo == nil || s.resolver == nil {
		return nil, ErrInternal
	}
	if _, err := s.FindByID(ctx, tagID); err != nil {
		return nil, err
	}

	sets, err := s.resolver.EffectiveTagSets(ctx, model.ResponseFilter{})
	if err != nil {
		return nil, err
	}
	matched := make(map[uint][]model.Tag)
	for _, set := range sets {
		if set.Has(tagID) {
			matched[set.Response.ResponseID] = set.Tags
		}
	}
	if len(matched) == 0 {
		return []model.TaggedResponse{}, nil
	}

	details, err := s.responseRepo.FindDetails(ctx, model.ResponseFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]model.TaggedResponse, 0, len(matched))
	for _, d := range details {
		if tags, ok := matched[d.ResponseID]; ok {
			out = append(out, model.TaggedResponse{ResponseDetail: d, Tags: model.NewTagRefs(tags)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SurveyResponseNumber != out[j].SurveyResponseNumber {
			return out[i].SurveyResponseNumber < out[j].SurveyResponseNumber
		}
		return out[i].ResponseID < out[j].ResponseID
	})
	return out, nil
}

// SeedCanonical 按 TagID 写入内置的 15 个一级标签，已存在的行会被覆盖。
func (s *tagService) SeedCanonical(ctx context.Context) (int, error) {
	if s.tagRepo == nil {
		return 0, ErrInternal
	}

	tags := taxonomy.CanonicalTags()
	for i := range tags {
		if err := s.tagRepo.Upsert(ctx, &tags[i]); err != nil {
			return i, err
		}
	}
	invalidate(ctx, s.cache, "TagService.SeedCanonical")
	return len(tags), nil
}

// ImportHierarchy 按名称查找或创建一级标签，再在其下查找或创建子标签。
// 子标签的父节点总是一级标签，层级深度固定为 2。一级标签名为空的行计入 Skipped。
func (s *tagService) ImportHierarchy(ctx context.Context, rows []HierarchyRow) (*HierarchyImportResult, error) {
	if s.tagRepo == nil {
		return nil, ErrInternal
	}

	result := &HierarchyImportResult{}
	primaries := make(map[string]*model.Tag)

	// 第一遍：一级标签
	for _, row := range rows {
		name := strings.TrimSpace(row.Primary)
		if name == "" {
			result.Skipped++
			continue
		}
		if _, ok := primaries[name]; ok {
			continue
		}

		tag, err := s.tagRepo.FindPrimaryByName(ctx, name)
		switch {
		case err == nil:
			result.PrimaryExisted++
		case errors.Is(err, gorm.ErrRecordNotFound):
			tag = &model.Tag{
				TagName:     name,
				TagCategory: importedPrimaryCategory,
				TagLevel:    model.TagLevelPrimary,
				IsActive:    true,
			}
			if err := s.tagRepo.Create(ctx, tag); err != nil {
				return result, err
			}
			result.PrimaryCreated++
			log.Infof("created primary tag %q (ID %d)", name, tag.TagID)
		default:
			return result, err
		}
		primaries[name] = tag
	}

	// 第二遍：子标签
	for _, row := range rows {
		parent, ok := primaries[strings.TrimSpace(row.Primary)]
		sub := strings.TrimSpace(row.Subtag)
		if !ok || sub == "" {
			continue
		}
		_, err := s.tagRepo.FindChild(ctx, parent.TagID, sub)
		switch {
		case err == nil:
			result.SubExisted++
		case errors.Is(err, gorm.ErrRecordNotFound):
			parentID := parent.TagID
			child := &model.Tag{
				TagName:     sub,
				TagCategory: importedSubCategory,
				TagLevel:    model.TagLevelSub,
				ParentTagID: &parentID,
				IsActive:    true,
			}
			if err := s.tagRepo.Create(ctx, child); err != nil {
				return result, err
			}
			result.SubCreated++
		default:
			return result, err
		}
	}

	if result.PrimaryCreated+result.SubCreated > 0 {
		invalidate(ctx, s.cache, "TagService.ImportHierarchy")
	}
	return result, nil
}
