package service

import (
	"context"
	"sort"
	"strings"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/repository"
	"survey_insight_go/internal/tagger"
	"survey_insight_go/pkg/log"
)

// Preview 是对一段任意文本的打标结果，Matches 包含所有达到阈值的标签及得分。
type Preview struct {
	TaxonomyVersion string         `json:"taxonomyVersion"`
	MaxTags         int            `json:"maxTags"`
	Matches         []tagger.Match `json:"matches"`
	Tags            []string       `json:"tags"`
}

// RetagStats 汇总一次全量重新打标。
type RetagStats struct {
	ResponsesProcessed int      `json:"responsesProcessed"`
	ResponsesTagged    int      `json:"responsesTagged"`
	Links              int      `json:"links"`
	AverageTags        float64  `json:"averageTags"`
	AtMaxTags          int      `json:"atMaxTags"`
	UnknownKeys        []string `json:"unknownKeys"`
}

// TaggingService 连接关键词打标器和算法标签表。
type TaggingService interface {
	Preview(text string, maxTags int) (*Preview, error)
	Retag(ctx context.Context) (*RetagStats, error)
}

type taggingService struct {
	tagger        *tagger.Tagger
	responseRepo  repository.ResponseRepository
	tagRepo       repository.TagRepository
	algorithmRepo repository.AlgorithmicTagRepository
	cache         Invalidator
	workers       int
}

func NewTaggingService(t *tagger.Tagger, responseRepo repository.ResponseRepository, tagRepo repository.TagRepository,
	algorithmRepo repository.AlgorithmicTagRepository, cache Invalidator, workers int) TaggingService {
	return &taggingService{
		tagger:        t,
		responseRepo:  responseRepo,
		tagRepo:       tagRepo,
		algorithmRepo: algorithmRepo,
		cache:         cache,
		workers:       workers,
	}
}

func (s *taggingService) Preview(text string, maxTags int) (*Preview, error) {
	if s.tagger == nil {
		return nil, ErrInternal
	}
	if strings.TrimSpace(text) == "" || maxTags < 0 {
		return nil, ErrInvalidInput
	}
	if maxTags == 0 {
		maxTags = s.tagger.MaxTags()
	}
	return &Preview{
		TaxonomyVersion: s.tagger.TaxonomyVersion(),
		MaxTags:         maxTags,
		Matches:         s.tagger.Score(text),
		Tags:            s.tagger.Tag(text, maxTags),
	}, nil
}

// Retag 为所有有内容的响应重新计算算法标签，并整表替换 bridge_response_tags。
// 关键词表里有、标签目录里没有的 key 会被跳过并记录在 UnknownKeys 里。
func (s *taggingService) Retag(ctx context.Context) (*RetagStats, error) {
	if s.tagger == nil || s.responseRepo == nil || s.tagRepo == nil || s.algorithmRepo == nil {
		return nil, ErrInternal
	}

	responses, err := s.responseRepo.FindForTagging(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	idByKey := make(map[string]uint, len(tags))
	for _, t := range tags {
		if t.TagKey != "" {
			idByKey[t.TagKey] = t.TagID
		}
	}

	inputs := make([]tagger.Input, 0, len(responses))
	for _, r := range responses {
		inputs = append(inputs, tagger.Input{ResponseID: r.ResponseID, Text: r.ResponseText})
	}
	results, err := s.tagger.TagAll(ctx, inputs, s.tagger.MaxTags(), s.workers)
	if err != nil {
		return nil, err
	}

	stats := &RetagStats{ResponsesProcessed: len(results), UnknownKeys: []string{}}
	unknown := make(map[string]struct{})
	links := make([]model.AlgorithmicTagLink, 0)
	for _, res := range results {
		if len(res.Keys) > 0 {
			stats.ResponsesTagged++
		}
		if len(res.Keys) >= s.tagger.MaxTags() {
			stats.AtMaxTags++
		}
		for _, key := range res.Keys {
			tagID, ok := idByKey[key]
			if !ok {
				unknown[key] = struct{}{}
				continue
			}
			links = append(links, model.AlgorithmicTagLink{ResponseID: res.ResponseID, TagID: tagID, TagKey: key})
		}
	}
	for key := range unknown {
		stats.UnknownKeys = append(stats.UnknownKeys, key)
	}
	sort.Strings(stats.UnknownKeys)
	stats.Links = len(links)
	if stats.ResponsesTagged > 0 {
		stats.AverageTags = float64(stats.Links) / float64(stats.ResponsesTagged)
	}

	if err := s.algorithmRepo.ReplaceAll(ctx, links); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, "TaggingService.Retag")

	if len(stats.UnknownKeys) > 0 {
		log.Warnf("retag: taxonomy keys missing from tag catalog: %v", stats.UnknownKeys)
	}
	log.Infow("retag finished",
		"taxonomy", s.tagger.TaxonomyVersion(),
		"processed", stats.ResponsesProcessed,
		"tagged", stats.ResponsesTagged,
		"links", stats.Links,
		"avg_tags", stats.AverageTags,
		"at_max", stats.AtMaxTags,
	)
	return stats, nil
}
