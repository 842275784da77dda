package service

import (
	"time"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/resolver"

	"gorm.io/gorm"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// world 是一份小型的三层标签数据：
//
//	R10 (SRN 100, Q1, Nursing):   算法 {1, 2, 4}，REMOVE 2      => {1}
//	R11 (SRN 101, Q1, Physician): 算法 {1}，ADD 3               => {1, 3}
//	R12 (SRN 100, Q2, Nursing):   算法 {3}，Q2 自动映射 2        => {2, 3}
//
// 标签 4 已停用，标签 5 是标签 1 的子标签。
type world struct {
	tags        *fakeTagRepo
	responses   *fakeResponseRepo
	algorithmic *fakeAlgorithmicRepo
	mappings    *fakeMappingRepo
	overrides   *fakeOverrideRepo
	resolver    resolver.Resolver
	cache       *countingInvalidator
}

func worldTags() []model.Tag {
	return []model.Tag{
		{TagID: 1, TagKey: "burnout_wellbeing", TagName: "Burnout & Wellbeing", TagCategory: "Wellness", TagLevel: model.TagLevelPrimary, IsActive: true},
		{TagID: 2, TagKey: "childcare", TagName: "Childcare Support", TagCategory: "Support", TagLevel: model.TagLevelPrimary, IsActive: true},
		{TagID: 3, TagKey: "rural_care", TagName: "Rural Care", TagCategory: "Geographic", TagLevel: model.TagLevelPrimary, IsActive: true},
		{TagID: 4, TagKey: "retired", TagName: "Retired", TagCategory: "Legacy", TagLevel: model.TagLevelPrimary, IsActive: false},
		{TagID: 5, TagName: "Night Shifts", TagCategory: "Sub Category", TagLevel: model.TagLevelSub, ParentTagID: uintPtr(1), IsActive: true},
	}
}

func worldResponses() []model.Response {
	return []model.Response{
		{ResponseID: 10, SurveyResponseNumber: 100, QuestionID: 1, ResponseText: "burnout is constant", HasResponse: true},
		{ResponseID: 11, SurveyResponseNumber: 101, QuestionID: 1, ResponseText: "we need more rest", HasResponse: true},
		{ResponseID: 12, SurveyResponseNumber: 100, QuestionID: 2, ResponseText: "daycare is far away", HasResponse: true},
	}
}

var worldRoles = map[uint]string{10: "Nursing", 11: "Physician", 12: "Nursing"}

func newWorld() *world {
	w := &world{
		tags:  tagsByID(worldTags()),
		cache: &countingInvalidator{},
	}

	responses := worldResponses()
	w.responses = &fakeResponseRepo{
		findByIDFn: func(id uint) (*model.Response, error) {
			for i := range responses {
				if responses[i].ResponseID == id {
					r := responses[i]
					return &r, nil
				}
			}
			return nil, gorm.ErrRecordNotFound
		},
		findKeysFn: func(filter model.ResponseFilter) ([]model.ResponseKey, error) {
			out := make([]model.ResponseKey, 0)
			for _, r := range responses {
				if filter.ResponseID != nil && *filter.ResponseID != r.ResponseID {
					continue
				}
				if filter.QuestionID != nil && *filter.QuestionID != r.QuestionID {
					continue
				}
				out = append(out, model.ResponseKey{
					ResponseID:           r.ResponseID,
					SurveyResponseNumber: r.SurveyResponseNumber,
					QuestionID:           r.QuestionID,
					RoleCategory:         worldRoles[r.ResponseID],
				})
			}
			return out, nil
		},
		findDetailsFn: func(filter model.ResponseFilter) ([]model.ResponseDetail, error) {
			out := make([]model.ResponseDetail, 0)
			for _, r := range responses {
				out = append(out, model.ResponseDetail{
					ResponseID:           r.ResponseID,
					SurveyResponseNumber: r.SurveyResponseNumber,
					ResponseText:         r.ResponseText,
					QuestionID:           r.QuestionID,
					RoleCategory:         worldRoles[r.ResponseID],
				})
			}
			return out, nil
		},
		findForTaggingFn: func() ([]model.Response, error) {
			return responses, nil
		},
	}

	w.algorithmic = &fakeAlgorithmicRepo{
		findByFilterFn: func(filter model.ResponseFilter) ([]model.AlgorithmicTagLink, error) {
			all := []model.AlgorithmicTagLink{
				{ResponseID: 10, TagID: 1}, {ResponseID: 10, TagID: 2}, {ResponseID: 10, TagID: 4},
				{ResponseID: 11, TagID: 1},
				{ResponseID: 12, TagID: 3},
			}
			if filter.ResponseID == nil {
				return all, nil
			}
			out := make([]model.AlgorithmicTagLink, 0)
			for _, l := range all {
				if l.ResponseID == *filter.ResponseID {
					out = append(out, l)
				}
			}
			return out, nil
		},
	}

	mappings := []model.QuestionTagMapping{
		{MappingID: 1, QuestionID: 2, TagID: 2, AssignmentType: model.AssignmentAutomatic, IsActive: true},
		{MappingID: 2, QuestionID: 1, TagID: 3, AssignmentType: model.AssignmentSuggested, IsActive: true},
	}
	w.mappings = &fakeMappingRepo{
		findActiveAutomaticFn: func() ([]model.QuestionTagMapping, error) {
			return mappings[:1], nil
		},
		findByQuestionFn: func(questionID uint) ([]model.QuestionTagMapping, error) {
			out := make([]model.QuestionTagMapping, 0)
			for _, m := range mappings {
				if m.QuestionID == questionID {
					out = append(out, m)
				}
			}
			return out, nil
		},
	}

	overrides := []model.ManualOverride{
		{OverrideID: 1, SurveyResponseNumber: 100, QuestionID: 1, TagID: 2, Action: model.OverrideRemove, AppliedDate: baseTime, IsActive: true},
		{OverrideID: 2, SurveyResponseNumber: 101, QuestionID: 1, TagID: 3, Action: model.OverrideAdd, AppliedDate: baseTime, IsActive: true},
	}
	w.overrides = &fakeOverrideRepo{
		findActiveByFilterFn: func(model.ResponseFilter) ([]model.ManualOverride, error) {
			return overrides, nil
		},
		findByResponseKeyFn: func(srn int, qid uint) ([]model.ManualOverride, error) {
			out := make([]model.ManualOverride, 0)
			for _, o := range overrides {
				if o.SurveyResponseNumber == srn && o.QuestionID == qid {
					out = append(out, o)
				}
			}
			return out, nil
		},
	}

	w.resolver = resolver.New(resolver.Sources{
		Responses:   w.responses,
		Algorithmic: w.algorithmic,
		Mappings:    w.mappings,
		Overrides:   w.overrides,
		Tags:        w.tags,
	})
	return w
}

func (w *world) overrideService() *overrideService {
	return NewOverrideService(OverrideDeps{
		Responses:   w.responses,
		Tags:        w.tags,
		Overrides:   w.overrides,
		Algorithmic: w.algorithmic,
		Mappings:    w.mappings,
		Resolver:    w.resolver,
		Cache:       w.cache,
	}).(*overrideService)
}

func tagIDs(tags []model.Tag) []uint {
	out := make([]uint, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.TagID)
	}
	return out
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
