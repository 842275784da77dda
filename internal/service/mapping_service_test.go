package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"survey_insight_go/internal/model"

	"gorm.io/gorm"
)

func newWorldMappingService(w *world) *mappingService {
	return NewMappingService(w.mappings, w.tags, w.responses, w.cache).(*mappingService)
}

func TestMappingService_Upsert_DefaultsToAutomatic(t *testing.T) {
	w := newWorld()
	var saved *model.QuestionTagMapping
	w.mappings.upsertFn = func(m *model.QuestionTagMapping) error {
		saved = m
		return nil
	}
	svc := newWorldMappingService(w)
	fixed := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	got, err := svc.Upsert(context.Background(), 1, 2, "", "", " staffing question ")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if saved == nil || got.AssignmentType != model.AssignmentAutomatic {
		t.Fatalf("expect AUTOMATIC mapping persisted, got %+v", got)
	}
	if got.AppliedBy != "system" || got.Notes != "staffing question" || !got.IsActive || !got.AppliedDate.Equal(fixed) {
		t.Fatalf("unexpected mapping fields: %+v", got)
	}
	if w.cache.calls != 1 {
		t.Fatalf("expect one cache invalidation, got %d", w.cache.calls)
	}
}

func TestMappingService_Upsert_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		questionID uint
		tagID      uint
		assignment model.AssignmentType
		wantErr    error
	}{
		{"bad assignment", 1, 2, "ALWAYS", ErrInvalidInput},
		{"inactive tag", 1, 4, model.AssignmentAutomatic, ErrInvalidInput},
		{"unknown tag", 1, 99, model.AssignmentAutomatic, ErrInvalidInput},
		{"unknown question", 77, 2, model.AssignmentAutomatic, ErrQuestionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			w.responses.findQuestionFn = func(id uint) (*model.Question, error) {
				if id == 77 {
					return nil, gorm.ErrRecordNotFound
				}
				return &model.Question{QuestionID: id}, nil
			}
			w.mappings.upsertFn = func(*model.QuestionTagMapping) error {
				t.Fatalf("Upsert should not reach the store")
				return nil
			}
			_, err := newWorldMappingService(w).Upsert(context.Background(), tt.questionID, tt.tagID, tt.assignment, "bob", "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expect %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMappingService_Deactivate(t *testing.T) {
	w := newWorld()
	var gotActor string
	w.mappings.deactivateFn = func(questionID, tagID uint, appliedBy string, at time.Time) error {
		if questionID == 2 && tagID == 2 {
			gotActor = appliedBy
			return nil
		}
		return gorm.ErrRecordNotFound
	}
	svc := newWorldMappingService(w)

	if err := svc.Deactivate(context.Background(), 2, 2, "carol"); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if gotActor != "carol" || w.cache.calls != 1 {
		t.Fatalf("unexpected actor %q or cache calls %d", gotActor, w.cache.calls)
	}
	if err := svc.Deactivate(context.Background(), 2, 3, "carol"); !errors.Is(err, ErrMappingNotFound) {
		t.Fatalf("expect ErrMappingNotFound, got %v", err)
	}
}

func TestMappingService_Import(t *testing.T) {
	w := newWorld()
	w.tags.findActiveByNameFn = func(name string) (*model.Tag, error) {
		for _, tag := range worldTags() {
			if tag.IsActive && strings.EqualFold(tag.TagName, name) {
				return &tag, nil
			}
		}
		return nil, gorm.ErrRecordNotFound
	}
	var upserted []model.QuestionTagMapping
	w.mappings.upsertFn = func(m *model.QuestionTagMapping) error {
		upserted = append(upserted, *m)
		return nil
	}
	rows := []MappingRow{
		{QuestionID: 1, TagName: "childcare support", AssignmentType: "automatic"},
		{QuestionID: 2, TagName: "Rural Care", AssignmentType: "SUGGESTED", Notes: "maybe"},
		{QuestionID: 3, TagName: "Unknown Tag", AssignmentType: "AUTOMATIC"},
		{QuestionID: 3, TagName: "Unknown Tag", AssignmentType: "AUTOMATIC"},
		{QuestionID: 0, TagName: "Rural Care"},
		{QuestionID: 4, TagName: "Rural Care", AssignmentType: "SOMETIMES"},
	}
	svc := newWorldMappingService(w)

	dry, err := svc.Import(context.Background(), rows, true)
	if err != nil {
		t.Fatalf("Import(dry) error = %v", err)
	}
	if len(upserted) != 0 || w.cache.calls != 0 {
		t.Fatalf("dry run must not write, upserted=%d cache=%d", len(upserted), w.cache.calls)
	}
	if !dry.DryRun || dry.Upserted != 2 || dry.Skipped != 4 {
		t.Fatalf("unexpected dry-run result: %+v", dry)
	}

	res, err := svc.Import(context.Background(), rows, false)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Upserted != 2 || len(upserted) != 2 {
		t.Fatalf("expect 2 upserts, got %+v / %d", res, len(upserted))
	}
	if len(res.UnknownTags) != 1 || res.UnknownTags[0] != "Unknown Tag" {
		t.Fatalf("unknown tags should be reported once, got %v", res.UnknownTags)
	}
	if upserted[0].TagID != 2 || upserted[0].AssignmentType != model.AssignmentAutomatic || upserted[0].AppliedBy != mappingImportActor {
		t.Fatalf("unexpected first mapping: %+v", upserted[0])
	}
	if upserted[1].TagID != 3 || upserted[1].AssignmentType != model.AssignmentSuggested || upserted[1].Notes != "maybe" {
		t.Fatalf("unexpected second mapping: %+v", upserted[1])
	}
	if w.cache.calls != 1 {
		t.Fatalf("expect one cache invalidation, got %d", w.cache.calls)
	}
}

func TestMappingService_List(t *testing.T) {
	w := newWorld()
	list, err := newWorldMappingService(w).List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].TagID != 3 || list[0].AssignmentType != model.AssignmentSuggested {
		t.Fatalf("unexpected mappings: %+v", list)
	}
	if _, err := newWorldMappingService(w).List(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput, got %v", err)
	}
}
