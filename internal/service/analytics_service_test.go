package service

import (
	"context"
	"errors"
	"testing"

	"survey_insight_go/internal/model"
	"survey_insight_go/internal/resolver"

	"gorm.io/gorm"
)

func TestAnalyticsService_Overview(t *testing.T) {
	w := newWorld()
	w.responses.statsFn = func() (*model.ResponseStats, error) {
		return &model.ResponseStats{TotalResponses: 3, UniqueRespondents: 2, AvgWordCount: 3.5, AvgResponseLength: 18}, nil
	}
	w.responses.countByRoleCategoryFn = func() ([]model.CategoryCount, error) {
		return []model.CategoryCount{{Category: "Nursing", Count: 2}, {Category: "Physician", Count: 1}}, nil
	}
	svc := NewAnalyticsService(w.responses, w.tags, w.resolver)

	got, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if got.Overview.TotalResponses != 3 || got.Overview.UniqueRespondents != 2 {
		t.Fatalf("unexpected overview: %+v", got.Overview)
	}
	if len(got.RoleCategoryAnalysis) != 2 {
		t.Fatalf("unexpected role analysis: %+v", got.RoleCategoryAnalysis)
	}
	if got.QuestionTypeAnalysis == nil {
		t.Fatalf("question type analysis should be an empty slice, not nil")
	}

	// 每个类别各 1 个有效标签，按名称排序
	wantCategories := []string{"Geographic", "Sub Category", "Support", "Wellness"}
	if len(got.TagCategoryAnalysis) != len(wantCategories) {
		t.Fatalf("unexpected tag categories: %+v", got.TagCategoryAnalysis)
	}
	for i, c := range got.TagCategoryAnalysis {
		if c.Category != wantCategories[i] || c.Count != 1 {
			t.Fatalf("position %d: expect %s=1, got %+v", i, wantCategories[i], c)
		}
	}

	if len(got.PriorityAreas) != 4 || got.PriorityAreas[0].TagID != 1 || got.PriorityAreas[1].TagID != 3 {
		t.Fatalf("unexpected priority areas: %+v", got.PriorityAreas)
	}

	nursing := got.FilteredTagAnalysis["Nursing"]
	if len(nursing) != 3 || nursing[0].TagName != "Burnout & Wellbeing" || nursing[1].TagName != "Childcare Support" {
		t.Fatalf("unexpected Nursing breakdown: %+v", nursing)
	}
	physician := got.FilteredTagAnalysis["Physician"]
	if len(physician) != 2 || physician[1].TagName != "Rural Care" {
		t.Fatalf("unexpected Physician breakdown: %+v", physician)
	}

	burnout := got.TagRoleDistribution["Burnout & Wellbeing"]
	if len(burnout) != 2 || burnout[0].RoleCategory != "Nursing" || burnout[1].RoleCategory != "Physician" {
		t.Fatalf("unexpected role distribution: %+v", burnout)
	}
	if childcare := got.TagRoleDistribution["Childcare Support"]; len(childcare) != 1 || childcare[0].ResponseCount != 1 {
		t.Fatalf("removed tag must not be counted on R10, got %+v", childcare)
	}
}

func TestAnalyticsService_Overview_PriorityLimit(t *testing.T) {
	tags := make([]model.Tag, 0, 12)
	for i := 1; i <= 12; i++ {
		tags = append(tags, model.Tag{TagID: uint(i), TagName: "T", TagLevel: model.TagLevelPrimary, IsActive: true})
	}
	w := newWorld()
	w.tags = tagsByID(tags)
	svc := NewAnalyticsService(w.responses, w.tags, w.resolver)

	got, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if len(got.PriorityAreas) != priorityAreaLimit {
		t.Fatalf("expect %d priority areas, got %d", priorityAreaLimit, len(got.PriorityAreas))
	}
}

func TestAnalyticsService_Overview_StoreError(t *testing.T) {
	w := newWorld()
	w.responses.statsFn = func() (*model.ResponseStats, error) {
		return nil, errors.New("db down")
	}
	if _, err := NewAnalyticsService(w.responses, w.tags, w.resolver).Overview(context.Background()); err == nil {
		t.Fatalf("expect error, got nil")
	}
}

func TestAnalyticsService_QuestionDistribution(t *testing.T) {
	w := newWorld()
	w.responses.findQuestionFn = func(id uint) (*model.Question, error) {
		if id > 2 {
			return nil, gorm.ErrRecordNotFound
		}
		return &model.Question{QuestionID: id}, nil
	}
	svc := NewAnalyticsService(w.responses, w.tags, w.resolver)

	dist, err := svc.QuestionDistribution(context.Background(), 1)
	if err != nil {
		t.Fatalf("QuestionDistribution() error = %v", err)
	}
	if len(dist) != 2 || dist[0].TagID != 1 || dist[0].TagCount != 2 || dist[1].TagID != 3 || dist[1].TagCount != 1 {
		t.Fatalf("unexpected distribution: %+v", dist)
	}

	if _, err := svc.QuestionDistribution(context.Background(), 9); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expect ErrQuestionNotFound, got %v", err)
	}
	if _, err := svc.QuestionDistribution(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput, got %v", err)
	}
}

func TestCrossTabulate_SameSubtagNameUnderDifferentParents(t *testing.T) {
	rural, urban := uint(1), uint(2)
	tags := []model.Tag{
		{TagID: 1, TagName: "Rural Care", TagLevel: 1, IsActive: true},
		{TagID: 2, TagName: "Urban Care", TagLevel: 1, IsActive: true},
		{TagID: 11, TagName: "Travel", TagLevel: 2, ParentTagID: &rural, IsActive: true},
		{TagID: 12, TagName: "Travel", TagLevel: 2, ParentTagID: &urban, IsActive: true},
	}
	sets := []resolver.ResolvedResponse{
		{Response: model.ResponseKey{ResponseID: 1, RoleCategory: "Nursing"}, Tags: []model.Tag{tags[2]}},
		{Response: model.ResponseKey{ResponseID: 2, RoleCategory: "Nursing"}, Tags: []model.Tag{tags[3]}},
		{Response: model.ResponseKey{ResponseID: 3, RoleCategory: "Physician"}, Tags: []model.Tag{tags[3]}},
	}

	byRole, byTag := crossTabulate(sets, tagLabels(tags))

	if len(byTag) != 2 {
		t.Fatalf("distinct tags must not share a bucket, got %v", byTag)
	}
	if rows := byTag["Rural Care > Travel"]; len(rows) != 1 || rows[0].ResponseCount != 1 {
		t.Fatalf("unexpected rural travel rows: %+v", rows)
	}
	if rows := byTag["Urban Care > Travel"]; len(rows) != 2 {
		t.Fatalf("unexpected urban travel rows: %+v", rows)
	}
	if len(byRole["Nursing"]) != 2 {
		t.Fatalf("nursing should list both travel tags, got %+v", byRole["Nursing"])
	}
}

func TestTagLabels(t *testing.T) {
	parent := uint(1)
	labels := tagLabels([]model.Tag{
		{TagID: 1, TagName: "Workforce", TagLevel: 1},
		{TagID: 2, TagName: "Pay", TagLevel: 2, ParentTagID: &parent},
		{TagID: 3, TagName: "Pay", TagLevel: 1},
		{TagID: 4, TagName: "Stress", TagLevel: 1},
	})
	if labels[4] != "Stress" {
		t.Fatalf("unique names stay unqualified, got %q", labels[4])
	}
	if labels[2] != "Workforce > Pay" || labels[3] != "Pay" {
		t.Fatalf("unexpected labels for duplicate names: %q, %q", labels[2], labels[3])
	}
}
