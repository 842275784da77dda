package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"survey_insight_go/internal/model"
)

func TestOverrideService_RecordOverride_Success(t *testing.T) {
	w := newWorld()
	var created *model.ManualOverride
	w.overrides.createFn = func(o *model.ManualOverride) error {
		o.OverrideID = 42
		created = o
		return nil
	}
	svc := w.overrideService()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	got, err := svc.RecordOverride(context.Background(), 10, 3, " add ", "alice", " looks rural ")
	if err != nil {
		t.Fatalf("RecordOverride() error = %v", err)
	}
	if created == nil || got.OverrideID != 42 {
		t.Fatalf("override not persisted: %+v", got)
	}
	if got.Action != model.OverrideAdd {
		t.Fatalf("expect action normalized to ADD, got %q", got.Action)
	}
	if got.SurveyResponseNumber != 100 || got.QuestionID != 1 {
		t.Fatalf("override should be keyed by (SRN, question), got (%d, %d)", got.SurveyResponseNumber, got.QuestionID)
	}
	if got.AppliedBy != "alice" || got.Notes != "looks rural" || !got.IsActive {
		t.Fatalf("unexpected override fields: %+v", got)
	}
	if !got.AppliedDate.Equal(fixed) {
		t.Fatalf("expect server timestamp %v, got %v", fixed, got.AppliedDate)
	}
	if w.cache.calls != 1 {
		t.Fatalf("expect one cache invalidation, got %d", w.cache.calls)
	}
}

func TestOverrideService_RecordOverride_DefaultAuthor(t *testing.T) {
	w := newWorld()
	got, err := w.overrideService().RecordOverride(context.Background(), 10, 1, model.OverrideRemove, "  ", "")
	if err != nil {
		t.Fatalf("RecordOverride() error = %v", err)
	}
	if got.AppliedBy != "system" {
		t.Fatalf("expect AppliedBy=system, got %q", got.AppliedBy)
	}
}

func TestOverrideService_RecordOverride_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		responseID uint
		tagID      uint
		action     model.OverrideAction
		wantErr    error
	}{
		{"invalid action", 10, 1, "TOGGLE", ErrInvalidInput},
		{"zero tag", 10, 0, model.OverrideAdd, ErrInvalidInput},
		{"unknown tag", 10, 99, model.OverrideAdd, ErrInvalidInput},
		{"inactive tag", 10, 4, model.OverrideAdd, ErrInvalidInput},
		{"unknown response", 999, 1, model.OverrideAdd, ErrResponseNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			w.overrides.createFn = func(*model.ManualOverride) error {
				t.Fatalf("Create should not be called")
				return nil
			}
			_, err := w.overrideService().RecordOverride(context.Background(), tt.responseID, tt.tagID, tt.action, "bob", "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expect %v, got %v", tt.wantErr, err)
			}
			if w.cache.calls != 0 {
				t.Fatalf("cache should not be invalidated on rejected write")
			}
		})
	}
}

func TestOverrideService_RecordOverride_CacheErrorIgnored(t *testing.T) {
	w := newWorld()
	w.cache.err = errors.New("redis down")
	if _, err := w.overrideService().RecordOverride(context.Background(), 10, 1, model.OverrideRemove, "bob", ""); err != nil {
		t.Fatalf("cache failure should not fail the write, got %v", err)
	}
}

func TestOverrideService_History(t *testing.T) {
	w := newWorld()
	history, err := w.overrideService().History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 || history[0].TagID != 2 || history[0].Action != model.OverrideRemove {
		t.Fatalf("unexpected history: %+v", history)
	}

	if _, err := w.overrideService().History(context.Background(), 999); !errors.Is(err, ErrResponseNotFound) {
		t.Fatalf("expect ErrResponseNotFound, got %v", err)
	}
}

func TestOverrideService_ResponseTags_RemovedByOverride(t *testing.T) {
	w := newWorld()
	detail, err := w.overrideService().ResponseTags(context.Background(), 10)
	if err != nil {
		t.Fatalf("ResponseTags() error = %v", err)
	}
	if len(detail.Tags) != 1 || detail.Tags[0].TagID != 1 {
		t.Fatalf("expect effective tags [1], got %+v", detail.Tags)
	}
	if detail.Tags[0].OverrideState != model.OverrideStateNone {
		t.Fatalf("tag 1 was never overridden, got %q", detail.Tags[0].OverrideState)
	}
	if len(detail.Removed) != 1 || detail.Removed[0].TagID != 2 {
		t.Fatalf("expect removed [2], got %+v", detail.Removed)
	}
	if detail.Removed[0].OverrideState != model.OverrideStateRemoved {
		t.Fatalf("expect REMOVED state, got %q", detail.Removed[0].OverrideState)
	}
	if len(detail.Removed[0].Sources) != 1 || detail.Removed[0].Sources[0] != model.SourceAlgorithmic {
		t.Fatalf("unexpected removed sources: %v", detail.Removed[0].Sources)
	}
}

func TestOverrideService_ResponseTags_Provenance(t *testing.T) {
	w := newWorld()
	svc := w.overrideService()

	// R11: 标签 3 只来自人工 ADD，Q1 的 SUGGESTED 映射不算来源
	detail, err := svc.ResponseTags(context.Background(), 11)
	if err != nil {
		t.Fatalf("ResponseTags() error = %v", err)
	}
	if len(detail.Tags) != 2 {
		t.Fatalf("expect 2 tags, got %+v", detail.Tags)
	}
	rural := detail.Tags[1]
	if rural.TagID != 3 || rural.OverrideState != model.OverrideStateAdded {
		t.Fatalf("unexpected tag: %+v", rural)
	}
	if len(rural.Sources) != 1 || rural.Sources[0] != model.SourceManual {
		t.Fatalf("expect sources [manual], got %v", rural.Sources)
	}

	// R12: 标签 2 来自问题映射，标签 3 来自算法
	detail, err = svc.ResponseTags(context.Background(), 12)
	if err != nil {
		t.Fatalf("ResponseTags() error = %v", err)
	}
	if len(detail.Tags) != 2 || detail.Tags[0].TagID != 2 || detail.Tags[1].TagID != 3 {
		t.Fatalf("unexpected tags: %+v", detail.Tags)
	}
	if detail.Tags[0].Sources[0] != model.SourceQuestionMapping || detail.Tags[1].Sources[0] != model.SourceAlgorithmic {
		t.Fatalf("unexpected sources: %v / %v", detail.Tags[0].Sources, detail.Tags[1].Sources)
	}
	if len(detail.Removed) != 0 {
		t.Fatalf("expect no removed tags, got %+v", detail.Removed)
	}
}

func TestOverrideService_ResponseTags_StoreError(t *testing.T) {
	w := newWorld()
	w.mappings.findByQuestionFn = func(uint) ([]model.QuestionTagMapping, error) {
		return nil, errors.New("db down")
	}
	if _, err := w.overrideService().ResponseTags(context.Background(), 10); err == nil {
		t.Fatalf("expect error, got nil")
	}
}

func TestOverrideService_MissingDependencies(t *testing.T) {
	svc := NewOverrideService(OverrideDeps{})
	if _, err := svc.RecordOverride(context.Background(), 1, 1, model.OverrideAdd, "a", ""); !errors.Is(err, ErrInternal) {
		t.Fatalf("expect ErrInternal, got %v", err)
	}
	if _, err := svc.ResponseTags(context.Background(), 1); !errors.Is(err, ErrInternal) {
		t.Fatalf("expect ErrInternal, got %v", err)
	}
}
