package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/repository"
	"survey_insight_go/pkg/log"

	"gorm.io/gorm"
)

// mappingImportActor 是批量导入映射时记录的操作人。
const mappingImportActor = "Question-based Import"

// MappingRow 是映射导入文件中的一行。
type MappingRow struct {
	QuestionID     uint
	TagName        string
	AssignmentType string
	Notes          string
}

// MappingImportResult 汇总一次映射导入。DryRun 时 Upserted 表示"将要写入"的行数。
type MappingImportResult struct {
	Upserted    int      `json:"upserted"`
	Skipped     int      `json:"skipped"`
	UnknownTags []string `json:"unknownTags"`
	DryRun      bool     `json:"dryRun"`
}

// MappingService 维护问题级标签映射。只有 AUTOMATIC 且有效的映射参与有效标签解析。
type MappingService interface {
	List(ctx context.Context, questionID uint) ([]model.QuestionTagMapping, error)
	Upsert(ctx context.Context, questionID, tagID uint, assignment model.AssignmentType, actor, notes string) (*model.QuestionTagMapping, error)
	Deactivate(ctx context.Context, questionID, tagID uint, actor string) error
	// Import 批量导入：行视为已校验，不再检查问题是否存在；标签名解析失败的行跳过
	Import(ctx context.Context, rows []MappingRow, dryRun bool) (*MappingImportResult, error)
}

type mappingService struct {
	mappingRepo  repository.QuestionTagMappingRepository
	tagRepo      repository.TagRepository
	responseRepo repository.ResponseRepository
	cache        Invalidator
	now          func() time.Time
}

func NewMappingService(mappingRepo repository.QuestionTagMappingRepository, tagRepo repository.TagRepository,
	responseRepo repository.ResponseRepository, cache Invalidator) MappingService {
	return &mappingService{
		mappingRepo:  mappingRepo,
		tagRepo:      tagRepo,
		responseRepo: responseRepo,
		cache:        cache,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *mappingService) List(ctx context.Context, questionID uint) ([]model.QuestionTagMapping, error) {
	if s.mappingRepo == nil {
		return nil, ErrInternal
	}
	if questionID == 0 {
		return nil, ErrInvalidInput
	}
	return s.mappingRepo.FindByQuestion(ctx, questionID)
}

// Upsert 新建或覆盖 (问题, 标签) 映射，未指定类型时为 AUTOMATIC。
func (s *mappingService) Upsert(ctx context.Context, questionID, tagID uint, assignment model.AssignmentType, actor, notes string) (*model.QuestionTagMapping, error) {
	if s.mappingRepo == nil || s.tagRepo == nil || s.responseRepo == nil {
		return nil, ErrInternal
	}

	assignment = model.AssignmentType(strings.ToUpper(strings.TrimSpace(string(assignment))))
	if assignment == "" {
		assignment = model.AssignmentAutomatic
	}
	if questionID == 0 || tagID == 0 || !assignment.Valid() {
		return nil, ErrInvalidInput
	}

	if _, err := s.responseRepo.FindQuestion(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
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

	mapping := &model.QuestionTagMapping{
		QuestionID:     questionID,
		TagID:          tagID,
		AssignmentType: assignment,
		AppliedBy:      normalizeActor(actor),
		AppliedDate:    s.now(),
		Notes:          strings.TrimSpace(notes),
		IsActive:       true,
	}
	if err := s.mappingRepo.Upsert(ctx, mapping); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, "MappingService.Upsert")
	return mapping, nil
}

func (s *mappingService) Deactivate(ctx context.Context, questionID, tagID uint, actor string) error {
	if s.mappingRepo == nil {
		return ErrInternal
	}
	if questionID == 0 || tagID == 0 {
		return ErrInvalidInput
	}

	if err := s.mappingRepo.Deactivate(ctx, questionID, tagID, normalizeActor(actor), s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMappingNotFound
		}
		return err
	}
	invalidate(ctx, s.cache, "MappingService.Deactivate")
	return nil
}

func (s *mappingService) Import(ctx context.Context, rows []MappingRow, dryRun bool) (*MappingImportResult, error) {
	if s.mappingRepo == nil || s.tagRepo == nil {
		return nil, ErrInternal
	}

	result := &MappingImportResult{DryRun: dryRun, UnknownTags: []string{}}
	unknown := make(map[string]bool)
	at := s.now()

	for _, row := range rows {
		name := strings.TrimSpace(row.TagName)
		assignment := model.AssignmentType(strings.ToUpper(strings.TrimSpace(row.AssignmentType)))
		if assignment == "" {
			assignment = model.AssignmentAutomatic
		}
		if row.QuestionID == 0 || name == "" || !assignment.Valid() {
			result.Skipped++
			continue
		}

		tag, err := s.tagRepo.FindActiveByName(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if !unknown[name] {
					unknown[name] = true
					result.UnknownTags = append(result.UnknownTags, name)
					log.Warnf("MappingService.Import: tag not found: %q", name)
				}
				result.Skipped++
				continue
			}
			return result, err
		}

		if !dryRun {
			mapping := &model.QuestionTagMapping{
				QuestionID:     row.QuestionID,
				TagID:          tag.TagID,
				AssignmentType: assignment,
				AppliedBy:      mappingImportActor,
				AppliedDate:    at,
				Notes:          strings.TrimSpace(row.Notes),
				IsActive:       true,
			}
			if err := s.mappingRepo.Upsert(ctx, mapping); err != nil {
				return result, err
			}
		}
		result.Upserted++
	}

	if !dryRun && result.Upserted > 0 {
		invalidate(ctx, s.cache, "MappingService.Import")
	}
	return result, nil
}
