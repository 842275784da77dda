package service

import (
	"context"
	"sort"
	"strings"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/repository"
	"survey_insight_go/internal/resolver"
)

// ResponseService 提供带有效标签的响应浏览。
type ResponseService interface {
	// ListByQuestion 返回所有有内容的响应，按问题分组，组内按调查编号排序
	ListByQuestion(ctx context.Context) ([]model.QuestionResponses, error)
}

type responseService struct {
	responseRepo repository.ResponseRepository
	resolver     resolver.Resolver
}

func NewResponseService(responseRepo repository.ResponseRepository, r resolver.Resolver) ResponseService {
	return &responseService{responseRepo: responseRepo, resolver: r}
}

func (s *responseService) ListByQuestion(ctx context.Context) ([]model.QuestionResponses, error) {
	if s.responseRepo == nil || s.resolver == nil {
		return nil, ErrInternal
	}

	filter := model.ResponseFilter{ContentOnly: true}
	details, err := s.responseRepo.FindDetails(ctx, filter)
	if err != nil {
		return nil, err
	}
	sets, err := s.resolver.EffectiveTagSets(ctx, filter)
	if err != nil {
		return nil, err
	}
	tagsByResponse := make(map[uint][]model.Tag, len(sets))
	for _, set := range sets {
		tagsByResponse[set.Response.ResponseID] = set.Tags
	}

	groups := make([]model.QuestionResponses, 0)
	index := make(map[uint]int)
	for _, d := range details {
		if strings.TrimSpace(d.ResponseText) == "" {
			continue
		}
		i, ok := index[d.QuestionID]
		if !ok {
			i = len(groups)
			index[d.QuestionID] = i
			groups = append(groups, model.QuestionResponses{
				QuestionID:    d.QuestionID,
				QuestionText:  d.QuestionText,
				QuestionShort: d.QuestionShort,
				Responses:     []model.TaggedResponse{},
			})
		}
		groups[i].Responses = append(groups[i].Responses, model.TaggedResponse{
			ResponseDetail: d,
			Tags:           model.NewTagRefs(tagsByResponse[d.ResponseID]),
		})
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].QuestionID < groups[j].QuestionID })
	for _, g := range groups {
		responses := g.Responses
		sort.SliceStable(responses, func(i, j int) bool {
			return responses[i].SurveyResponseNumber < responses[j].SurveyResponseNumber
		})
	}
	return groups, nil
}
