package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/repository"
	"survey_insight_go/internal/resolver"
	"survey_insight_go/pkg/log"

	"gorm.io/gorm"
)

// OverrideService 负责人工修正的写入与查询。
type OverrideService interface {
	// RecordOverride 追加一条修正。action 必须是 ADD / REMOVE，tag 必须存在且有效。
	RecordOverride(ctx context.Context, responseID, tagID uint, action model.OverrideAction, author, notes string) (*model.ManualOverride, error)
	// History 返回某条响应的全部修正，最新的在前
	History(ctx context.Context, responseID uint) ([]model.ManualOverride, error)
	// ResponseTags 返回有效标签及来源、修正状态
	ResponseTags(ctx context.Context, responseID uint) (*model.ResponseTagDetail, error)
}

type overrideService struct {
	responseRepo    repository.ResponseRepository
	tagRepo         repository.TagRepository
	overrideRepo    repository.ManualOverrideRepository
	algorithmicRepo repository.AlgorithmicTagRepository
	mappingRepo     repository.QuestionTagMappingRepository
	resolver        resolver.Resolver
	cache           Invalidator
	now             func() time.Time
}

// OverrideDeps 聚合 OverrideService 的依赖。
type OverrideDeps struct {
	Responses   repository.ResponseRepository
	Tags        repository.TagRepository
	Overrides   repository.ManualOverrideRepository
	Algorithmic repository.AlgorithmicTagRepository
	Mappings    repository.QuestionTagMappingRepository
	Resolver    resolver.Resolver
	Cache       Invalidator
}

func NewOverrideService(deps OverrideDeps) OverrideService {
	return &overrideService{
		responseRepo:    deps.Responses,
		tagRepo:         deps.Tags,
		overrideRepo:    deps.Overrides,
		algorithmicRepo: deps.Algorithmic,
		mappingRepo:     deps.Mappings,
		resolver:        deps.Resolver,
		cache:           deps.Cache,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *overrideService) findResponse(ctx context.Context, responseID uint) (*model.Response, error) {
	if responseID == 0 {
		return nil, ErrInvalidInput
	}
	resp, err := s.responseRepo.FindByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	if resp == nil {
		return nil, ErrResponseNotFound
	}
	return resp, nil
}

// RecordOverride 只做一次 INSERT：时间戳由服务端生成（UTC），OverrideID 由数据库自增，
// 并发写同一 (响应, 标签) 时由数据库串行化，最新者生效。
func (s *overrideService) RecordOverride(ctx context.Context, responseID, tagID uint, action model.OverrideAction, author, notes string) (*model.ManualOverride, error) {
	if s.responseRepo == nil || s.tagRepo == nil || s.overrideRepo == nil {
		return nil, ErrInternal
	}

	action = model.OverrideAction(strings.ToUpper(strings.TrimSpace(string(action))))
	if !action.Valid() || tagID == 0 {
		return nil, ErrInvalidInput
	}

	resp, err := s.findResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}

	tag, err := s.tagRepo.FindByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}
	if tag == nil || !tag.IsActive {
		return nil, ErrInvalidInput
	}

	override := &model.ManualOverride{
		SurveyResponseNumber: resp.SurveyResponseNumber,
		QuestionID:           resp.QuestionID,
		TagID:                tagID,
		Action:               action,
		AppliedBy:            normalizeActor(author),
		AppliedDate:          s.now(),
		Notes:                strings.TrimSpace(notes),
		IsActive:             true,
	}
	if err := s.overrideRepo.Create(ctx, override); err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, "OverrideService.RecordOverride")
	log.Infow("manual override recorded",
		"overrideId", override.OverrideID,
		"responseId", responseID,
		"tagId", tagID,
		"action", action,
		"appliedBy", override.AppliedBy,
	)
	return override, nil
}

func (s *overrideService) History(ctx context.Context, responseID uint) ([]model.ManualOverride, error) {
	if s.responseRepo == nil || s.overrideRepo == nil {
		return nil, ErrInternal
	}

	resp, err := s.findResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	return s.overrideRepo.FindByResponseKey(ctx, resp.SurveyResponseNumber, resp.QuestionID)
}

// ResponseTags 的有效标签集合以 Resolver 为准，这里只补充每个标签来自哪一层。
func (s *overrideService) ResponseTags(ctx context.Context, responseID uint) (*model.ResponseTagDetail, error) {
	if s.responseRepo == nil || s.tagRepo == nil || s.overrideRepo == nil ||
		s.algorithmicRepo == nil || s.mappingRepo == nil || s.resolver == nil {
		return nil, ErrInternal
	}

	resp, err := s.findResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}

	effective, err := s.resolver.EffectiveTags(ctx, responseID)
	if err != nil {
		if errors.Is(err, resolver.ErrResponseNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}

	links, err := s.algorithmicRepo.FindByFilter(ctx, model.ResponseFilter{ResponseID: &responseID})
	if err != nil {
		return nil, err
	}
	algorithmic := make(map[uint]bool, len(links))
	for _, l := range links {
		algorithmic[l.TagID] = true
	}

	mappings, err := s.mappingRepo.FindByQuestion(ctx, resp.QuestionID)
	if err != nil {
		return nil, err
	}
	mapped := make(map[uint]bool, len(mappings))
	for _, m := range mappings {
		if m.IsActive && m.AssignmentType == model.AssignmentAutomatic {
			mapped[m.TagID] = true
		}
	}

	history, err := s.overrideRepo.FindByResponseKey(ctx, resp.SurveyResponseNumber, resp.QuestionID)
	if err != nil {
		return nil, err
	}
	latest := make(map[uint]*model.ManualOverride)
	for key, o := range resolver.LatestOverrides(history) {
		o := o
		latest[key.TagID] = &o
	}

	detail := &model.ResponseTagDetail{
		ResponseID:           resp.ResponseID,
		SurveyResponseNumber: resp.SurveyResponseNumber,
		QuestionID:           resp.QuestionID,
		Tags:                 make([]model.EffectiveTag, 0, len(effective)),
		Removed:              []model.EffectiveTag{},
	}
	for _, t := range effective {
		sources := make([]string, 0, 3)
		if algorithmic[t.TagID] {
			sources = append(sources, model.SourceAlgorithmic)
		}
		if mapped[t.TagID] {
			sources = append(sources, model.SourceQuestionMapping)
		}
		state := model.StateOf(latest[t.TagID])
		if state == model.OverrideStateAdded {
			sources = append(sources, model.SourceManual)
		}
		detail.Tags = append(detail.Tags, model.EffectiveTag{Tag: t, Sources: sources, OverrideState: state})
	}

	// 被 REMOVE 掉的底层标签，只列出仍然有效的标签
	for tagID, o := range latest {
		if o.Action != model.OverrideRemove || !(algorithmic[tagID] || mapped[tagID]) {
			continue
		}
		tag, err := s.tagRepo.FindByID(ctx, tagID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if tag == nil || !tag.IsActive {
			continue
		}
		sources := make([]string, 0, 2)
		if algorithmic[tagID] {
			sources = append(sources, model.SourceAlgorithmic)
		}
		if mapped[tagID] {
			sources = append(sources, model.SourceQuestionMapping)
		}
		detail.Removed = append(detail.Removed, model.EffectiveTag{Tag: *tag, Sources: sources, OverrideState: model.OverrideStateRemoved})
	}
	sortEffective(detail.Removed)
	return detail, nil
}

func sortEffective(tags []model.EffectiveTag) {
	plain := make([]model.Tag, len(tags))
	index := make(map[uint]model.EffectiveTag, len(tags))
	for i, t := range tags {
		plain[i] = t.Tag
		index[t.TagID] = t
	}
	resolver.SortTags(plain)
	for i, t := range plain {
		tags[i] = index[t.TagID]
	}
}
